package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theoboldt/juvem-sub001/internal/domain"
)

const filloutColumns = `id, attribute_id, owner_type, owner_id, value, legacy_value, comment, created_at, modified_at`

// PostgresFilloutRepository implements FilloutRepository using PostgreSQL
type PostgresFilloutRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFilloutRepository creates a new PostgresFilloutRepository
func NewPostgresFilloutRepository(pool *pgxpool.Pool) *PostgresFilloutRepository {
	return &PostgresFilloutRepository{pool: pool}
}

func scanFillout(row pgx.Row) (*domain.Fillout, error) {
	f := &domain.Fillout{}
	var ownerType string
	var value []byte
	err := row.Scan(
		&f.ID,
		&f.AttributeID,
		&ownerType,
		&f.OwnerID,
		&value,
		&f.LegacyValue,
		&f.Comment,
		&f.CreatedAt,
		&f.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	f.OwnerType = domain.OwnerType(ownerType)
	if err := unmarshalJSON(value, &f.Value); err != nil {
		return nil, fmt.Errorf("failed to decode fillout %s value: %w", f.ID, err)
	}
	return f, nil
}

func insertFillouts(ctx context.Context, q querier, fillouts []*domain.Fillout) error {
	query := `
		INSERT INTO fillouts (id, attribute_id, owner_type, owner_id, value, legacy_value, comment, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, f := range fillouts {
		value, err := marshalJSON(f.Value)
		if err != nil {
			return fmt.Errorf("failed to encode fillout value: %w", err)
		}
		_, err = q.Exec(ctx, query,
			f.ID,
			f.AttributeID,
			string(f.OwnerType),
			f.OwnerID,
			value,
			f.LegacyValue,
			f.Comment,
			f.CreatedAt,
			f.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fillout: %w", err)
		}
	}
	return nil
}

func loadFillouts(ctx context.Context, q querier, ownerType domain.OwnerType, ownerIDs []string) (map[string][]*domain.Fillout, error) {
	result := make(map[string][]*domain.Fillout, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + filloutColumns + ` FROM fillouts
		WHERE owner_type = $1 AND owner_id = ANY($2)
		ORDER BY created_at ASC, id ASC`
	rows, err := q.Query(ctx, query, string(ownerType), ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load fillouts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFillout(rows)
		if err != nil {
			return nil, err
		}
		result[f.OwnerID] = append(result[f.OwnerID], f)
	}
	return result, rows.Err()
}

// ListByOwners retrieves fillouts for several owners
func (r *PostgresFilloutRepository) ListByOwners(ctx context.Context, ownerType domain.OwnerType, ownerIDs []string) (map[string][]*domain.Fillout, error) {
	return loadFillouts(ctx, r.pool, ownerType, ownerIDs)
}

// ReplaceForOwner replaces all fillouts of an owner
func (r *PostgresFilloutRepository) ReplaceForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string, fillouts []*domain.Fillout) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return replaceFillouts(ctx, tx, ownerType, ownerID, fillouts)
	})
}

func replaceFillouts(ctx context.Context, q querier, ownerType domain.OwnerType, ownerID string, fillouts []*domain.Fillout) error {
	if _, err := q.Exec(ctx, `DELETE FROM fillouts WHERE owner_type = $1 AND owner_id = $2`, string(ownerType), ownerID); err != nil {
		return fmt.Errorf("failed to clear fillouts: %w", err)
	}
	return insertFillouts(ctx, q, fillouts)
}

// ListLegacy retrieves the next batch of fillouts still holding a raw value
func (r *PostgresFilloutRepository) ListLegacy(ctx context.Context, afterID string, limit int) ([]*domain.Fillout, error) {
	query := `SELECT ` + filloutColumns + ` FROM fillouts
		WHERE legacy_value IS NOT NULL AND id::text > $1
		ORDER BY id::text ASC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy fillouts: %w", err)
	}
	defer rows.Close()

	fillouts := make([]*domain.Fillout, 0, limit)
	for rows.Next() {
		f, err := scanFillout(rows)
		if err != nil {
			return nil, err
		}
		fillouts = append(fillouts, f)
	}
	return fillouts, rows.Err()
}

// ApplyMigration writes decoded values of one batch, all or nothing
func (r *PostgresFilloutRepository) ApplyMigration(ctx context.Context, updates []FilloutValueUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE fillouts SET value = $2, legacy_value = NULL, modified_at = $3 WHERE id = $1`
	now := time.Now()

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, u := range updates {
			value, err := marshalJSON(u.Value)
			if err != nil {
				return fmt.Errorf("failed to encode fillout value: %w", err)
			}
			result, err := tx.Exec(ctx, query, u.FilloutID, value, now)
			if err != nil {
				return fmt.Errorf("failed to migrate fillout %s: %w", u.FilloutID, err)
			}
			if result.RowsAffected() == 0 {
				return fmt.Errorf("fillout %s: %w", u.FilloutID, ErrNotFound)
			}
		}
		return nil
	})
}
