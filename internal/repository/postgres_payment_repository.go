package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// Create inserts payment events in one transaction
func (r *PostgresPaymentRepository) Create(ctx context.Context, events ...*domain.PaymentEvent) error {
	if len(events) == 0 {
		return nil
	}
	query := `
		INSERT INTO payment_events (id, participant_id, type, value, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range events {
			batch.Queue(query, e.ID, e.ParticipantID, string(e.Type), e.Value, e.Description, e.CreatedBy, e.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert payment events: %w", err)
		}
		return nil
	})
}

// ListByParticipants retrieves payment events keyed by participant
func (r *PostgresPaymentRepository) ListByParticipants(ctx context.Context, participantIDs []string) (map[string][]*domain.PaymentEvent, error) {
	result := make(map[string][]*domain.PaymentEvent, len(participantIDs))
	if len(participantIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, participant_id, type, value, description, created_by, created_at
		FROM payment_events WHERE participant_id = ANY($1)
		ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, participantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e := &domain.PaymentEvent{}
		var paymentType string
		if err := rows.Scan(&e.ID, &e.ParticipantID, &paymentType, &e.Value, &e.Description, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.PaymentType(paymentType)
		result[e.ParticipantID] = append(result[e.ParticipantID], e)
	}
	return result, rows.Err()
}
