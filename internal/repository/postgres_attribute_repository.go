package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theoboldt/juvem-sub001/internal/domain"
)

const attributeColumns = `id, management_title, management_description, form_title, form_description,
	field_type, is_multiple_choice, is_required, is_public, use_at_participation, use_at_participant,
	use_at_employee, price_formula, sort, created_at, modified_at, deleted_at`

const optionColumns = `id, attribute_id, legacy_id, management_title, form_title, short_title, price_formula, sort`

// PostgresAttributeRepository implements AttributeRepository using PostgreSQL
type PostgresAttributeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAttributeRepository creates a new PostgresAttributeRepository
func NewPostgresAttributeRepository(pool *pgxpool.Pool) *PostgresAttributeRepository {
	return &PostgresAttributeRepository{pool: pool}
}

func scanAttribute(row pgx.Row) (*domain.Attribute, error) {
	a := &domain.Attribute{}
	var fieldType string
	err := row.Scan(
		&a.ID,
		&a.ManagementTitle,
		&a.ManagementDescription,
		&a.FormTitle,
		&a.FormDescription,
		&fieldType,
		&a.IsMultipleChoice,
		&a.IsRequired,
		&a.IsPublic,
		&a.UseAtParticipation,
		&a.UseAtParticipant,
		&a.UseAtEmployee,
		&a.PriceFormula,
		&a.Sort,
		&a.CreatedAt,
		&a.ModifiedAt,
		&a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.FieldType = domain.FieldType(fieldType)
	a.Options = []*domain.AttributeOption{}
	return a, nil
}

func insertOption(ctx context.Context, q querier, o *domain.AttributeOption) error {
	query := `INSERT INTO attribute_options (` + optionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.Exec(ctx, query,
		o.ID, o.AttributeID, o.LegacyID, o.ManagementTitle, o.FormTitle, o.ShortTitle, o.PriceFormula, o.Sort)
	if err != nil {
		return fmt.Errorf("failed to insert attribute option: %w", err)
	}
	return nil
}

// Create inserts an attribute with its options
func (r *PostgresAttributeRepository) Create(ctx context.Context, a *domain.Attribute) error {
	query := `
		INSERT INTO attributes (` + attributeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NULL)
	`
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			a.ID,
			a.ManagementTitle,
			a.ManagementDescription,
			a.FormTitle,
			a.FormDescription,
			string(a.FieldType),
			a.IsMultipleChoice,
			a.IsRequired,
			a.IsPublic,
			a.UseAtParticipation,
			a.UseAtParticipant,
			a.UseAtEmployee,
			a.PriceFormula,
			a.Sort,
			a.CreatedAt,
			a.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attribute: %w", err)
		}
		for _, o := range a.Options {
			if err := insertOption(ctx, tx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresAttributeRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Attribute, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	attributes := make([]*domain.Attribute, 0)
	byID := make(map[string]*domain.Attribute)
	ids := make([]string, 0)
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, a)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return attributes, nil
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT `+optionColumns+` FROM attribute_options WHERE attribute_id = ANY($1) ORDER BY sort ASC, id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query attribute options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		o := &domain.AttributeOption{}
		if err := optRows.Scan(&o.ID, &o.AttributeID, &o.LegacyID, &o.ManagementTitle, &o.FormTitle,
			&o.ShortTitle, &o.PriceFormula, &o.Sort); err != nil {
			return nil, err
		}
		if a, ok := byID[o.AttributeID]; ok {
			a.Options = append(a.Options, o)
		}
	}
	return attributes, optRows.Err()
}

// GetByID retrieves an attribute by ID
func (r *PostgresAttributeRepository) GetByID(ctx context.Context, id string) (*domain.Attribute, error) {
	attributes, err := r.query(ctx, `SELECT `+attributeColumns+` FROM attributes WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(attributes) == 0 {
		return nil, nil
	}
	return attributes[0], nil
}

// List retrieves all attributes
func (r *PostgresAttributeRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Attribute, error) {
	where := ""
	if !includeDeleted {
		where = ` WHERE deleted_at IS NULL`
	}
	return r.query(ctx, `SELECT `+attributeColumns+` FROM attributes`+where+` ORDER BY sort ASC, id ASC`)
}

// ListByIDs retrieves the non deleted attributes with the given IDs
func (r *PostgresAttributeRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Attribute, error) {
	if len(ids) == 0 {
		return []*domain.Attribute{}, nil
	}
	return r.query(ctx, `SELECT `+attributeColumns+` FROM attributes
		WHERE id = ANY($1) AND deleted_at IS NULL ORDER BY sort ASC, id ASC`, ids)
}

// Update updates an attribute. Options are managed separately.
func (r *PostgresAttributeRepository) Update(ctx context.Context, a *domain.Attribute) error {
	query := `
		UPDATE attributes
		SET management_title = $2, management_description = $3, form_title = $4, form_description = $5,
			field_type = $6, is_multiple_choice = $7, is_required = $8, is_public = $9,
			use_at_participation = $10, use_at_participant = $11, use_at_employee = $12,
			price_formula = $13, sort = $14, modified_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query,
		a.ID,
		a.ManagementTitle,
		a.ManagementDescription,
		a.FormTitle,
		a.FormDescription,
		string(a.FieldType),
		a.IsMultipleChoice,
		a.IsRequired,
		a.IsPublic,
		a.UseAtParticipation,
		a.UseAtParticipant,
		a.UseAtEmployee,
		a.PriceFormula,
		a.Sort,
		a.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update attribute: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes an attribute
func (r *PostgresAttributeRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE attributes SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete attribute: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddOption adds an option to an attribute
func (r *PostgresAttributeRepository) AddOption(ctx context.Context, o *domain.AttributeOption) error {
	return insertOption(ctx, r.pool, o)
}

// UpdateOption updates an option
func (r *PostgresAttributeRepository) UpdateOption(ctx context.Context, o *domain.AttributeOption) error {
	query := `
		UPDATE attribute_options
		SET legacy_id = $3, management_title = $4, form_title = $5, short_title = $6, price_formula = $7, sort = $8
		WHERE id = $1 AND attribute_id = $2
	`
	result, err := r.pool.Exec(ctx, query,
		o.ID, o.AttributeID, o.LegacyID, o.ManagementTitle, o.FormTitle, o.ShortTitle, o.PriceFormula, o.Sort)
	if err != nil {
		return fmt.Errorf("failed to update attribute option: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOption removes an option
func (r *PostgresAttributeRepository) DeleteOption(ctx context.Context, attributeID, optionID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM attribute_options WHERE id = $1 AND attribute_id = $2`, optionID, attributeID)
	if err != nil {
		return fmt.Errorf("failed to delete attribute option: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
