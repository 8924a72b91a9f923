package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
)

// DefaultMigrationBatchSize is used when MigrationOptions.BatchSize is not positive
const DefaultMigrationBatchSize = 200

// MigrationOptions controls a migration run
type MigrationOptions struct {
	DryRun    bool
	BatchSize int
}

// MigrationFailure is a legacy value that could not be decoded and was left untouched
type MigrationFailure struct {
	FilloutID   string `json:"fillout_id"`
	AttributeID string `json:"attribute_id"`
	Raw         string `json:"raw"`
	Reason      string `json:"reason"`
}

// MigrationReport summarizes a migration run
type MigrationReport struct {
	DryRun    bool               `json:"dry_run"`
	Processed int                `json:"processed"`
	Migrated  int                `json:"migrated"`
	Batches   int                `json:"batches"`
	Failed    []MigrationFailure `json:"failed"`
}

// filloutMigrationService implements FilloutMigrationService
type filloutMigrationService struct {
	fillouts   repository.FilloutRepository
	attributes repository.AttributeRepository
	log        *logger.Logger
}

// NewFilloutMigrationService creates a new FilloutMigrationService
func NewFilloutMigrationService(fillouts repository.FilloutRepository, attributes repository.AttributeRepository, log *logger.Logger) FilloutMigrationService {
	return &filloutMigrationService{fillouts: fillouts, attributes: attributes, log: log}
}

// Run decodes all legacy fillout values batch by batch. Every batch is stored
// in one transaction; values that fail to decode keep their raw value.
func (s *filloutMigrationService) Run(ctx context.Context, opts MigrationOptions) (*MigrationReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultMigrationBatchSize
	}
	report := &MigrationReport{DryRun: opts.DryRun, Failed: []MigrationFailure{}}
	attributes := make(map[string]*domain.Attribute)

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch, err := s.fillouts.ListLegacy(ctx, afterID, opts.BatchSize)
		if err != nil {
			return report, fmt.Errorf("failed to list legacy fillouts: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		report.Batches++

		updates := make([]repository.FilloutValueUpdate, 0, len(batch))
		for _, f := range batch {
			report.Processed++
			afterID = f.ID
			raw := ""
			if f.LegacyValue != nil {
				raw = *f.LegacyValue
			}

			attr, ok := attributes[f.AttributeID]
			if !ok {
				if attr, err = s.attributes.GetByID(ctx, f.AttributeID); err != nil {
					return report, err
				}
				attributes[f.AttributeID] = attr
			}
			if attr == nil {
				report.Failed = append(report.Failed, MigrationFailure{
					FilloutID: f.ID, AttributeID: f.AttributeID, Raw: raw, Reason: "unknown attribute",
				})
				continue
			}

			value, err := domain.DecodeLegacyValue(attr, raw)
			if err != nil {
				report.Failed = append(report.Failed, MigrationFailure{
					FilloutID: f.ID, AttributeID: f.AttributeID, Raw: raw, Reason: err.Error(),
				})
				continue
			}
			updates = append(updates, repository.FilloutValueUpdate{FilloutID: f.ID, Value: value})
		}

		if !opts.DryRun && len(updates) > 0 {
			if err := s.fillouts.ApplyMigration(ctx, updates); err != nil {
				return report, fmt.Errorf("failed to store batch %d: %w", report.Batches, err)
			}
		}
		report.Migrated += len(updates)
		s.log.WithContext(ctx).Info("fillout migration batch done",
			zap.Int("batch", report.Batches),
			zap.Int("size", len(batch)),
			zap.Int("migrated", len(updates)),
			zap.Bool("dry_run", opts.DryRun),
		)

		if len(batch) < opts.BatchSize {
			break
		}
	}

	s.log.WithContext(ctx).Info("fillout migration finished",
		zap.Int("processed", report.Processed),
		zap.Int("migrated", report.Migrated),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}
