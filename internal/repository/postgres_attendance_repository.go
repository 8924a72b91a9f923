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

const attendanceListColumns = `id, event_id, title, description, created_at, modified_at, deleted_at`

// PostgresAttendanceRepository implements AttendanceRepository using PostgreSQL
type PostgresAttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAttendanceRepository creates a new PostgresAttendanceRepository
func NewPostgresAttendanceRepository(pool *pgxpool.Pool) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{pool: pool}
}

func scanAttendanceList(row pgx.Row) (*domain.AttendanceList, error) {
	l := &domain.AttendanceList{}
	err := row.Scan(&l.ID, &l.EventID, &l.Title, &l.Description, &l.CreatedAt, &l.ModifiedAt, &l.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	l.Columns = []*domain.AttendanceColumn{}
	return l, nil
}

// CreateList inserts a list with its columns
func (r *PostgresAttendanceRepository) CreateList(ctx context.Context, l *domain.AttendanceList) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO attendance_lists (id, event_id, title, description, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.EventID, l.Title, l.Description, l.CreatedAt, l.ModifiedAt)
		if err != nil {
			return fmt.Errorf("failed to insert attendance list: %w", err)
		}
		for _, c := range l.Columns {
			if err := insertColumn(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertColumn(ctx context.Context, q querier, c *domain.AttendanceColumn) error {
	_, err := q.Exec(ctx,
		`INSERT INTO attendance_columns (id, list_id, title, sort) VALUES ($1, $2, $3, $4)`,
		c.ID, c.ListID, c.Title, c.Sort)
	if err != nil {
		return fmt.Errorf("failed to insert attendance column: %w", err)
	}
	for _, ch := range c.Choices {
		_, err := q.Exec(ctx,
			`INSERT INTO attendance_choices (id, column_id, title, short_title) VALUES ($1, $2, $3, $4)`,
			ch.ID, ch.ColumnID, ch.Title, ch.ShortTitle)
		if err != nil {
			return fmt.Errorf("failed to insert attendance choice: %w", err)
		}
	}
	return nil
}

// GetList retrieves a list with columns and choices
func (r *PostgresAttendanceRepository) GetList(ctx context.Context, id string) (*domain.AttendanceList, error) {
	l, err := scanAttendanceList(r.pool.QueryRow(ctx,
		`SELECT `+attendanceListColumns+` FROM attendance_lists WHERE id = $1`, id))
	if err != nil || l == nil {
		return l, err
	}
	if err := r.loadColumns(ctx, []*domain.AttendanceList{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// ListByEvent retrieves the non deleted lists of an event
func (r *PostgresAttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceList, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attendanceListColumns+` FROM attendance_lists
		WHERE event_id = $1 AND deleted_at IS NULL ORDER BY title ASC, id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance lists: %w", err)
	}
	defer rows.Close()

	lists := make([]*domain.AttendanceList, 0)
	for rows.Next() {
		l, err := scanAttendanceList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadColumns(ctx, lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *PostgresAttendanceRepository) loadColumns(ctx context.Context, lists []*domain.AttendanceList) error {
	if len(lists) == 0 {
		return nil
	}
	listIDs := make([]string, len(lists))
	byList := make(map[string]*domain.AttendanceList, len(lists))
	for i, l := range lists {
		listIDs[i] = l.ID
		byList[l.ID] = l
	}

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.list_id, c.title, c.sort, ch.id, ch.title, ch.short_title
		FROM attendance_columns c
		LEFT JOIN attendance_choices ch ON ch.column_id = c.id
		WHERE c.list_id = ANY($1)
		ORDER BY c.sort ASC, c.id ASC, ch.title ASC, ch.id ASC`, listIDs)
	if err != nil {
		return fmt.Errorf("failed to load attendance columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]*domain.AttendanceColumn)
	for rows.Next() {
		var (
			columnID, listID, title string
			sort                    int
			choiceID, choiceTitle   *string
			choiceShort             *string
		)
		if err := rows.Scan(&columnID, &listID, &title, &sort, &choiceID, &choiceTitle, &choiceShort); err != nil {
			return err
		}
		column, ok := columns[columnID]
		if !ok {
			column = &domain.AttendanceColumn{ID: columnID, ListID: listID, Title: title, Sort: sort,
				Choices: []*domain.AttendanceChoice{}}
			columns[columnID] = column
			byList[listID].Columns = append(byList[listID].Columns, column)
		}
		if choiceID != nil {
			choice := &domain.AttendanceChoice{ID: *choiceID, ColumnID: columnID}
			if choiceTitle != nil {
				choice.Title = *choiceTitle
			}
			if choiceShort != nil {
				choice.ShortTitle = *choiceShort
			}
			column.Choices = append(column.Choices, choice)
		}
	}
	return rows.Err()
}

// UpdateList updates title and description
func (r *PostgresAttendanceRepository) UpdateList(ctx context.Context, l *domain.AttendanceList) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE attendance_lists SET title = $2, description = $3, modified_at = $4 WHERE id = $1 AND deleted_at IS NULL`,
		l.ID, l.Title, l.Description, l.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update attendance list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteList soft deletes a list
func (r *PostgresAttendanceRepository) SoftDeleteList(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE attendance_lists SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete attendance list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddColumn inserts a column with its choices
func (r *PostgresAttendanceRepository) AddColumn(ctx context.Context, c *domain.AttendanceColumn) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return insertColumn(ctx, tx, c)
	})
}

// DeleteColumn removes a column, its choices and cells
func (r *PostgresAttendanceRepository) DeleteColumn(ctx context.Context, listID, columnID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM attendance_columns WHERE id = $1 AND list_id = $2`, columnID, listID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance column: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddChoice appends a choice to a column
func (r *PostgresAttendanceRepository) AddChoice(ctx context.Context, ch *domain.AttendanceChoice) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendance_choices (id, column_id, title, short_title) VALUES ($1, $2, $3, $4)`,
		ch.ID, ch.ColumnID, ch.Title, ch.ShortTitle)
	if err != nil {
		return fmt.Errorf("failed to insert attendance choice: %w", err)
	}
	return nil
}

// DeleteChoice removes a choice; the foreign key clears it from cells
func (r *PostgresAttendanceRepository) DeleteChoice(ctx context.Context, columnID, choiceID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM attendance_choices WHERE id = $1 AND column_id = $2`, choiceID, columnID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance choice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFillouts retrieves all cells of a list
func (r *PostgresAttendanceRepository) ListFillouts(ctx context.Context, listID string) ([]*domain.AttendanceFillout, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT list_id, participant_id, column_id, choice_id, comment, modified_at
		FROM attendance_fillouts WHERE list_id = $1`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance fillouts: %w", err)
	}
	defer rows.Close()

	fillouts := make([]*domain.AttendanceFillout, 0)
	for rows.Next() {
		f := &domain.AttendanceFillout{}
		if err := rows.Scan(&f.ListID, &f.ParticipantID, &f.ColumnID, &f.ChoiceID, &f.Comment, &f.ModifiedAt); err != nil {
			return nil, err
		}
		fillouts = append(fillouts, f)
	}
	return fillouts, rows.Err()
}

// UpsertFillout creates or replaces a cell
func (r *PostgresAttendanceRepository) UpsertFillout(ctx context.Context, f *domain.AttendanceFillout) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendance_fillouts (list_id, participant_id, column_id, choice_id, comment, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (list_id, participant_id, column_id)
		DO UPDATE SET choice_id = EXCLUDED.choice_id, comment = EXCLUDED.comment, modified_at = EXCLUDED.modified_at`,
		f.ListID, f.ParticipantID, f.ColumnID, f.ChoiceID, f.Comment, f.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to store attendance fillout: %w", err)
	}
	return nil
}

// DeleteFillout clears a cell
func (r *PostgresAttendanceRepository) DeleteFillout(ctx context.Context, listID, participantID, columnID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM attendance_fillouts WHERE list_id = $1 AND participant_id = $2 AND column_id = $3`,
		listID, participantID, columnID)
	if err != nil {
		return fmt.Errorf("failed to clear attendance fillout: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
