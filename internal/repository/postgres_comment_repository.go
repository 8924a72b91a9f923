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

const commentColumns = `id, subject, subject_id, content, created_by, modified_by, created_at, modified_at, deleted_at`

// PostgresCommentRepository implements CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	c := &domain.Comment{}
	var subject string
	err := row.Scan(&c.ID, &subject, &c.SubjectID, &c.Content, &c.CreatedBy, &c.ModifiedBy,
		&c.CreatedAt, &c.ModifiedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Subject = domain.OwnerType(subject)
	return c, nil
}

// Create inserts a comment
func (r *PostgresCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `INSERT INTO comments (id, subject, subject_id, content, created_by, modified_by, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, c.ID, string(c.Subject), c.SubjectID, c.Content, c.CreatedBy, c.ModifiedBy,
		c.CreatedAt, c.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
}

// ListBySubject retrieves the comments of a subject, oldest first
func (r *PostgresCommentRepository) ListBySubject(ctx context.Context, subject domain.OwnerType, subjectID string) ([]*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
		WHERE subject = $1 AND subject_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, string(subject), subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Update updates the content of a comment
func (r *PostgresCommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE comments SET content = $2, modified_by = $3, modified_at = $4 WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Content, c.ModifiedBy, c.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a comment
func (r *PostgresCommentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE comments SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountBySubjects counts comments per subject
func (r *PostgresCommentRepository) CountBySubjects(ctx context.Context, subject domain.OwnerType, subjectIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return counts, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT subject_id, COUNT(*) FROM comments
		WHERE subject = $1 AND subject_id = ANY($2) AND deleted_at IS NULL
		GROUP BY subject_id`, string(subject), subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
