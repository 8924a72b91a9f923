package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theoboldt/juvem-sub001/internal/domain"
)

const eventColumns = `id, title, description, start_date, end_date, is_visible, is_active,
	price, participants_limit, created_by, modified_by, created_at, modified_at, deleted_at`

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&e.IsVisible,
		&e.IsActive,
		&e.Price,
		&e.ParticipantsLimit,
		&e.CreatedBy,
		&e.ModifiedBy,
		&e.CreatedAt,
		&e.ModifiedAt,
		&e.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.AttributeIDs = []string{}
	return e, nil
}

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, title, description, start_date, end_date, is_visible, is_active,
			price, participants_limit, created_by, modified_by, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			e.ID,
			e.Title,
			e.Description,
			e.StartDate,
			e.EndDate,
			e.IsVisible,
			e.IsActive,
			e.Price,
			e.ParticipantsLimit,
			e.CreatedBy,
			e.ModifiedBy,
			e.CreatedAt,
			e.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		return replaceEventAttributes(ctx, tx, e.ID, e.AttributeIDs)
	})
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := r.scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil || e == nil {
		return e, err
	}
	if err := r.loadAttributeIDs(ctx, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// List retrieves events with filter and pagination
func (r *PostgresEventRepository) List(ctx context.Context, filter EventFilter) ([]*domain.Event, int, error) {
	var conditions []string
	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}
	if filter.VisibleOnly {
		conditions = append(conditions, "is_visible = TRUE")
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		` ORDER BY start_date DESC, id ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, pageLimit(filter.ListFilter), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadAttributeIDs(ctx, events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Update updates an event
func (r *PostgresEventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, start_date = $4, end_date = $5, is_visible = $6,
			is_active = $7, price = $8, participants_limit = $9, modified_by = $10, modified_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Title,
		e.Description,
		e.StartDate,
		e.EndDate,
		e.IsVisible,
		e.IsActive,
		e.Price,
		e.ParticipantsLimit,
		e.ModifiedBy,
		e.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes an event by ID
func (r *PostgresEventRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE events SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore restores a soft deleted event
func (r *PostgresEventRepository) Restore(ctx context.Context, id string) error {
	query := `UPDATE events SET deleted_at = NULL, modified_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to restore event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAttributes replaces the attribute assignment of an event
func (r *PostgresEventRepository) SetAttributes(ctx context.Context, eventID string, attributeIDs []string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return replaceEventAttributes(ctx, tx, eventID, attributeIDs)
	})
}

func replaceEventAttributes(ctx context.Context, q querier, eventID string, attributeIDs []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM event_attributes WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear event attributes: %w", err)
	}
	for _, attributeID := range attributeIDs {
		_, err := q.Exec(ctx,
			`INSERT INTO event_attributes (event_id, attribute_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			eventID, attributeID,
		)
		if err != nil {
			return fmt.Errorf("failed to assign attribute %s: %w", attributeID, err)
		}
	}
	return nil
}

func (r *PostgresEventRepository) loadAttributeIDs(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT event_id, attribute_id FROM event_attributes WHERE event_id = ANY($1) ORDER BY attribute_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load event attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, attributeID string
		if err := rows.Scan(&eventID, &attributeID); err != nil {
			return err
		}
		if e, ok := byID[eventID]; ok {
			e.AttributeIDs = append(e.AttributeIDs, attributeID)
		}
	}
	return rows.Err()
}
