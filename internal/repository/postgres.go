package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepositories wires all PostgreSQL repositories on one pool
func NewPostgresRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Events:         NewPostgresEventRepository(pool),
		Participations: NewPostgresParticipationRepository(pool),
		Participants:   NewPostgresParticipantRepository(pool),
		Employees:      NewPostgresEmployeeRepository(pool),
		Attributes:     NewPostgresAttributeRepository(pool),
		Fillouts:       NewPostgresFilloutRepository(pool),
		Payments:       NewPostgresPaymentRepository(pool),
		Invoices:       NewPostgresInvoiceRepository(pool),
		Attendance:     NewPostgresAttendanceRepository(pool),
		Comments:       NewPostgresCommentRepository(pool),
	}
}

// inTx runs fn inside a transaction, committing on success
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func pageLimit(filter ListFilter) int {
	if filter.Limit <= 0 {
		return 1000
	}
	return filter.Limit
}
