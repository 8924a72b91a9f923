package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/theoboldt/juvem-sub001/internal/domain"
)

const invoiceColumns = `id, participation_id, event_id, number, sum, document_key, content_type, created_by, created_at`

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL
type PostgresInvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgresInvoiceRepository
func NewPostgresInvoiceRepository(pool *pgxpool.Pool) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{pool: pool}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	err := row.Scan(
		&inv.ID,
		&inv.ParticipationID,
		&inv.EventID,
		&inv.Number,
		&inv.Sum,
		&inv.DocumentKey,
		&inv.ContentType,
		&inv.CreatedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// NextSequence increments the per event counter atomically
func (r *PostgresInvoiceRepository) NextSequence(ctx context.Context, eventID string) (int, error) {
	query := `
		INSERT INTO invoice_sequences (event_id, last_value) VALUES ($1, 1)
		ON CONFLICT (event_id) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`
	var seq int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return seq, nil
}

// Create inserts an invoice
func (r *PostgresInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.ParticipationID,
		inv.EventID,
		inv.Number,
		inv.Sum,
		inv.DocumentKey,
		inv.ContentType,
		inv.CreatedBy,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by ID
func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
}

func (r *PostgresInvoiceRepository) list(ctx context.Context, column, value string) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + column + ` = $1 ORDER BY created_at DESC, number DESC`
	rows, err := r.pool.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ListByEvent retrieves invoices of an event
func (r *PostgresInvoiceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Invoice, error) {
	return r.list(ctx, "event_id", eventID)
}

// ListByParticipation retrieves invoices of a participation
func (r *PostgresInvoiceRepository) ListByParticipation(ctx context.Context, participationID string) ([]*domain.Invoice, error) {
	return r.list(ctx, "participation_id", participationID)
}
