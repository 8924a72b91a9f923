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

const participationColumns = `id, event_id, salutation, name_first, name_last,
	address_street, address_zip, address_city, address_country, email, phones,
	created_at, modified_at, deleted_at`

// PostgresParticipationRepository implements ParticipationRepository using PostgreSQL
type PostgresParticipationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipationRepository creates a new PostgresParticipationRepository
func NewPostgresParticipationRepository(pool *pgxpool.Pool) *PostgresParticipationRepository {
	return &PostgresParticipationRepository{pool: pool}
}

func scanParticipation(row pgx.Row) (*domain.Participation, error) {
	p := &domain.Participation{}
	var phones []byte
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.Salutation,
		&p.NameFirst,
		&p.NameLast,
		&p.Address.Street,
		&p.Address.Zip,
		&p.Address.City,
		&p.Address.Country,
		&p.Email,
		&phones,
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
	p.Phones = []domain.Phone{}
	if err := unmarshalJSON(phones, &p.Phones); err != nil {
		return nil, fmt.Errorf("failed to decode phones of participation %s: %w", p.ID, err)
	}
	return p, nil
}

// Create inserts a participation with participants and fillouts in one transaction
func (r *PostgresParticipationRepository) Create(ctx context.Context, p *domain.Participation) error {
	phones, err := marshalJSON(p.Phones)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO participations (id, event_id, salutation, name_first, name_last,
			address_street, address_zip, address_city, address_country, email, phones, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			p.ID,
			p.EventID,
			p.Salutation,
			p.NameFirst,
			p.NameLast,
			p.Address.Street,
			p.Address.Zip,
			p.Address.City,
			p.Address.Country,
			p.Email,
			phones,
			p.CreatedAt,
			p.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participation: %w", err)
		}
		if err := insertFillouts(ctx, tx, p.Fillouts); err != nil {
			return err
		}
		for _, participant := range p.Participants {
			if err := insertParticipant(ctx, tx, participant); err != nil {
				return err
			}
			if err := insertFillouts(ctx, tx, participant.Fillouts); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a participation by ID
func (r *PostgresParticipationRepository) GetByID(ctx context.Context, id string) (*domain.Participation, error) {
	p, err := scanParticipation(r.pool.QueryRow(ctx, `SELECT `+participationColumns+` FROM participations WHERE id = $1`, id))
	if err != nil || p == nil {
		return p, err
	}
	if err := r.loadChildren(ctx, []*domain.Participation{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByEvent retrieves participations of an event with pagination
func (r *PostgresParticipationRepository) ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Participation, int, error) {
	where := ` WHERE event_id = $1`
	if !filter.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM participations`+where, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count participations: %w", err)
	}

	query := `SELECT ` + participationColumns + ` FROM participations` + where +
		` ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, eventID, pageLimit(filter), filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	participations := make([]*domain.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, 0, err
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := r.loadChildren(ctx, participations); err != nil {
		return nil, 0, err
	}
	return participations, total, nil
}

func (r *PostgresParticipationRepository) loadChildren(ctx context.Context, participations []*domain.Participation) error {
	if len(participations) == 0 {
		return nil
	}
	ids := make([]string, len(participations))
	byID := make(map[string]*domain.Participation, len(participations))
	for i, p := range participations {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Participants = []*domain.Participant{}
	}

	participants, err := queryParticipants(ctx, r.pool,
		`SELECT `+participantColumns+` FROM participants
		WHERE participation_id = ANY($1)
		ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return err
	}
	for _, participant := range participants {
		if p, ok := byID[participant.ParticipationID]; ok {
			p.Participants = append(p.Participants, participant)
		}
	}

	fillouts, err := loadFillouts(ctx, r.pool, domain.OwnerParticipation, ids)
	if err != nil {
		return err
	}
	for _, p := range participations {
		p.Fillouts = fillouts[p.ID]
	}
	return nil
}

// Update updates the contact data of a participation
func (r *PostgresParticipationRepository) Update(ctx context.Context, p *domain.Participation, fillouts []*domain.Fillout) error {
	phones, err := marshalJSON(p.Phones)
	if err != nil {
		return err
	}
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateParticipation(ctx, tx, p, phones); err != nil {
			return err
		}
		if fillouts == nil {
			return nil
		}
		return replaceFillouts(ctx, tx, domain.OwnerParticipation, p.ID, fillouts)
	})
}

func updateParticipation(ctx context.Context, q querier, p *domain.Participation, phones []byte) error {
	query := `
		UPDATE participations
		SET salutation = $2, name_first = $3, name_last = $4, address_street = $5, address_zip = $6,
			address_city = $7, address_country = $8, email = $9, phones = $10, modified_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := q.Exec(ctx, query,
		p.ID,
		p.Salutation,
		p.NameFirst,
		p.NameLast,
		p.Address.Street,
		p.Address.Zip,
		p.Address.City,
		p.Address.Country,
		p.Email,
		phones,
		p.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update participation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a participation and its participants
func (r *PostgresParticipationRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx,
			`UPDATE participations SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
		if err != nil {
			return fmt.Errorf("failed to delete participation: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE participants SET deleted_at = $2, modified_at = $2 WHERE participation_id = $1 AND deleted_at IS NULL`, id, at)
		if err != nil {
			return fmt.Errorf("failed to delete participants: %w", err)
		}
		return nil
	})
}

// Restore restores a participation and the participants deleted with it
func (r *PostgresParticipationRepository) Restore(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var deletedAt *time.Time
		err := tx.QueryRow(ctx, `SELECT deleted_at FROM participations WHERE id = $1 FOR UPDATE`, id).Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to read participation: %w", err)
		}
		if deletedAt == nil {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx,
			`UPDATE participations SET deleted_at = NULL, modified_at = NOW() WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to restore participation: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE participants SET deleted_at = NULL, modified_at = NOW() WHERE participation_id = $1 AND deleted_at = $2`,
			id, *deletedAt); err != nil {
			return fmt.Errorf("failed to restore participants: %w", err)
		}
		return nil
	})
}
