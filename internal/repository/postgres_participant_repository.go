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

const participantColumns = `id, participation_id, event_id, name_first, name_last, birthday, gender,
	food, info, status, base_price, created_at, modified_at, deleted_at`

// PostgresParticipantRepository implements ParticipantRepository using PostgreSQL
type PostgresParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipantRepository creates a new PostgresParticipantRepository
func NewPostgresParticipantRepository(pool *pgxpool.Pool) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{pool: pool}
}

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	p := &domain.Participant{}
	var food []byte
	var status string
	err := row.Scan(
		&p.ID,
		&p.ParticipationID,
		&p.EventID,
		&p.NameFirst,
		&p.NameLast,
		&p.Birthday,
		&p.Gender,
		&food,
		&p.Info,
		&status,
		&p.BasePrice,
		&p.CreatedAt,
		&p.ModifiedAt,
		&p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Status = domain.ParticipantStatus(status)
	p.Food = []string{}
	if err := unmarshalJSON(food, &p.Food); err != nil {
		return nil, fmt.Errorf("failed to decode food of participant %s: %w", p.ID, err)
	}
	return p, nil
}

func insertParticipant(ctx context.Context, q querier, p *domain.Participant) error {
	food, err := marshalJSON(p.Food)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO participants (id, participation_id, event_id, name_first, name_last, birthday, gender,
			food, info, status, base_price, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = q.Exec(ctx, query,
		p.ID,
		p.ParticipationID,
		p.EventID,
		p.NameFirst,
		p.NameLast,
		p.Birthday,
		p.Gender,
		food,
		p.Info,
		string(p.Status),
		p.BasePrice,
		p.CreatedAt,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func queryParticipants(ctx context.Context, q querier, query string, args ...any) ([]*domain.Participant, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	fillouts, err := loadFillouts(ctx, q, domain.OwnerParticipant, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		p.Fillouts = fillouts[p.ID]
	}
	return participants, nil
}

// GetByID retrieves a participant by ID
func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	participants, err := queryParticipants(ctx, r.pool,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, nil
	}
	return participants[0], nil
}

// ListByEvent retrieves all non deleted participants of an event
func (r *PostgresParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	return queryParticipants(ctx, r.pool,
		`SELECT `+participantColumns+` FROM participants
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC`, eventID)
}

// CountActiveByEvent counts participants that occupy a place
func (r *PostgresParticipantRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM participants
		WHERE event_id = $1 AND deleted_at IS NULL AND status NOT IN ($2, $3)`
	var count int
	err := r.pool.QueryRow(ctx, query, eventID,
		string(domain.StatusWithdrawn), string(domain.StatusRejected)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

// Update updates personal data of a participant
func (r *PostgresParticipantRepository) Update(ctx context.Context, p *domain.Participant, fillouts []*domain.Fillout) error {
	food, err := marshalJSON(p.Food)
	if err != nil {
		return err
	}
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateParticipant(ctx, tx, p, food); err != nil {
			return err
		}
		if fillouts == nil {
			return nil
		}
		return replaceFillouts(ctx, tx, domain.OwnerParticipant, p.ID, fillouts)
	})
}

func updateParticipant(ctx context.Context, q querier, p *domain.Participant, food []byte) error {
	query := `
		UPDATE participants
		SET name_first = $2, name_last = $3, birthday = $4, gender = $5, food = $6, info = $7,
			base_price = $8, modified_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := q.Exec(ctx, query,
		p.ID,
		p.NameFirst,
		p.NameLast,
		p.Birthday,
		p.Gender,
		food,
		p.Info,
		p.BasePrice,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus stores the status change together with its history record
func (r *PostgresParticipantRepository) UpdateStatus(ctx context.Context, p *domain.Participant, t *domain.StatusTransition) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Guard against a concurrent change since the participant was read
		result, err := tx.Exec(ctx,
			`UPDATE participants SET status = $2, modified_at = $3
			WHERE id = $1 AND status = $4 AND deleted_at IS NULL`,
			p.ID, string(t.ToStatus), t.ChangedAt, string(t.FromStatus),
		)
		if err != nil {
			return fmt.Errorf("failed to update participant status: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO participant_status_transitions (id, participant_id, from_status, to_status, reason, changed_by, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.ParticipantID, string(t.FromStatus), string(t.ToStatus), t.Reason, t.ChangedBy, t.ChangedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to record status transition: %w", err)
		}
		return nil
	})
}

// ListTransitions retrieves the status history of a participant
func (r *PostgresParticipantRepository) ListTransitions(ctx context.Context, participantID string) ([]*domain.StatusTransition, error) {
	query := `SELECT id, participant_id, from_status, to_status, reason, changed_by, changed_at
		FROM participant_status_transitions WHERE participant_id = $1 ORDER BY changed_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status transitions: %w", err)
	}
	defer rows.Close()

	transitions := make([]*domain.StatusTransition, 0)
	for rows.Next() {
		t := &domain.StatusTransition{}
		var from, to string
		if err := rows.Scan(&t.ID, &t.ParticipantID, &from, &to, &t.Reason, &t.ChangedBy, &t.ChangedAt); err != nil {
			return nil, err
		}
		t.FromStatus = domain.ParticipantStatus(from)
		t.ToStatus = domain.ParticipantStatus(to)
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// SoftDelete soft deletes a participant
func (r *PostgresParticipantRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE participants SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore restores a soft deleted participant
func (r *PostgresParticipantRepository) Restore(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE participants SET deleted_at = NULL, modified_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to restore participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
