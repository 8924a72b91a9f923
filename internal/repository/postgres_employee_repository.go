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

const employeeColumns = `id, event_id, salutation, name_first, name_last, email, phones,
	address_street, address_zip, address_city, address_country,
	created_by, modified_by, created_at, modified_at, deleted_at`

// PostgresEmployeeRepository implements EmployeeRepository using PostgreSQL
type PostgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEmployeeRepository creates a new PostgresEmployeeRepository
func NewPostgresEmployeeRepository(pool *pgxpool.Pool) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{pool: pool}
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	e := &domain.Employee{}
	var phones []byte
	err := row.Scan(
		&e.ID,
		&e.EventID,
		&e.Salutation,
		&e.NameFirst,
		&e.NameLast,
		&e.Email,
		&phones,
		&e.Address.Street,
		&e.Address.Zip,
		&e.Address.City,
		&e.Address.Country,
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
	e.Phones = []domain.Phone{}
	if err := unmarshalJSON(phones, &e.Phones); err != nil {
		return nil, fmt.Errorf("failed to decode phones of employee %s: %w", e.ID, err)
	}
	return e, nil
}

// Create inserts an employee with its fillouts
func (r *PostgresEmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	phones, err := marshalJSON(e.Phones)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO employees (id, event_id, salutation, name_first, name_last, email, phones,
			address_street, address_zip, address_city, address_country,
			created_by, modified_by, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			e.ID,
			e.EventID,
			e.Salutation,
			e.NameFirst,
			e.NameLast,
			e.Email,
			phones,
			e.Address.Street,
			e.Address.Zip,
			e.Address.City,
			e.Address.Country,
			e.CreatedBy,
			e.ModifiedBy,
			e.CreatedAt,
			e.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert employee: %w", err)
		}
		return insertFillouts(ctx, tx, e.Fillouts)
	})
}

// GetByID retrieves an employee by ID
func (r *PostgresEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil || e == nil {
		return e, err
	}
	fillouts, err := loadFillouts(ctx, r.pool, domain.OwnerEmployee, []string{e.ID})
	if err != nil {
		return nil, err
	}
	e.Fillouts = fillouts[e.ID]
	return e, nil
}

// ListByEvent retrieves employees of an event ordered by name
func (r *PostgresEmployeeRepository) ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Employee, int, error) {
	where := ` WHERE event_id = $1`
	if !filter.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + where +
		` ORDER BY name_last ASC, name_first ASC, id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, eventID, pageLimit(filter), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	ids := make([]string, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	fillouts, err := loadFillouts(ctx, r.pool, domain.OwnerEmployee, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range employees {
		e.Fillouts = fillouts[e.ID]
	}
	return employees, total, nil
}

// Update updates an employee
func (r *PostgresEmployeeRepository) Update(ctx context.Context, e *domain.Employee, fillouts []*domain.Fillout) error {
	phones, err := marshalJSON(e.Phones)
	if err != nil {
		return err
	}
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateEmployee(ctx, tx, e, phones); err != nil {
			return err
		}
		if fillouts == nil {
			return nil
		}
		return replaceFillouts(ctx, tx, domain.OwnerEmployee, e.ID, fillouts)
	})
}

func updateEmployee(ctx context.Context, q querier, e *domain.Employee, phones []byte) error {
	query := `
		UPDATE employees
		SET salutation = $2, name_first = $3, name_last = $4, email = $5, phones = $6,
			address_street = $7, address_zip = $8, address_city = $9, address_country = $10,
			modified_by = $11, modified_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := q.Exec(ctx, query,
		e.ID,
		e.Salutation,
		e.NameFirst,
		e.NameLast,
		e.Email,
		phones,
		e.Address.Street,
		e.Address.Zip,
		e.Address.City,
		e.Address.Country,
		e.ModifiedBy,
		e.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes an employee
func (r *PostgresEmployeeRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE employees SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore restores a soft deleted employee
func (r *PostgresEmployeeRepository) Restore(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE employees SET deleted_at = NULL, modified_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to restore employee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
