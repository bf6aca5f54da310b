package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/c4gt/bounce/internal/database"
	"github.com/c4gt/bounce/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DiscussionRepository handles discussion and discussion comment data access
type DiscussionRepository struct {
	pool *pgxpool.Pool
}

func NewDiscussionRepository(db *database.DB) *DiscussionRepository {
	return &DiscussionRepository{pool: db.Pool}
}

const discussionColumns = `id, title, content, author, created_at, updated_at`

const commentColumns = `id, discussion_id, content, author, author_email, author_avatar, created_at, updated_at`

func scanDiscussionRow(row rowScanner) (*models.Discussion, error) {
	var d models.Discussion

	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.Author, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	d.Comments = make([]*models.Comment, 0)
	return &d, nil
}

func scanCommentRow(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var authorEmail, authorAvatar *string

	err := row.Scan(
		&c.ID, &c.DiscussionID, &c.Content, &c.Author, &authorEmail, &authorAvatar,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if authorEmail != nil {
		c.AuthorEmail = *authorEmail
	}
	if authorAvatar != nil {
		c.AuthorAvatar = *authorAvatar
	}
	return &c, nil
}

func scanCommentRows(rows pgx.Rows) ([]*models.Comment, error) {
	defer rows.Close()

	comments := make([]*models.Comment, 0)

	for rows.Next() {
		c, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

// List returns discussions newest first, each with its comments attached.
// A non-empty query restricts results to discussions whose title or content
// contains it, case-insensitively.
func (r *DiscussionRepository) List(ctx context.Context, query string) ([]*models.Discussion, error) {
	sql := `SELECT ` + discussionColumns + ` FROM discussions`
	args := []any{}

	if q := strings.TrimSpace(query); q != "" {
		sql += ` WHERE title ILIKE $1 OR content ILIKE $1`
		args = append(args, "%"+escapeLike(q)+"%")
	}
	sql += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query discussions: %w", err)
	}
	defer rows.Close()

	discussions := make([]*models.Discussion, 0)
	byID := make(map[string]*models.Discussion)
	ids := make([]string, 0)

	for rows.Next() {
		d, err := scanDiscussionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discussion: %w", err)
		}
		discussions = append(discussions, d)
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discussion rows: %w", err)
	}

	if len(ids) == 0 {
		return discussions, nil
	}

	commentRows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE discussion_id = ANY($1) ORDER BY created_at ASC, id ASC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	comments, err := scanCommentRows(commentRows)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if d, ok := byID[c.DiscussionID]; ok {
			d.Comments = append(d.Comments, c)
		}
	}

	return discussions, nil
}

// GetByID returns a discussion with its comments, or models.ErrNotFound.
func (r *DiscussionRepository) GetByID(ctx context.Context, id string) (*models.Discussion, error) {
	d, err := scanDiscussionRow(r.pool.QueryRow(ctx,
		`SELECT `+discussionColumns+` FROM discussions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	comments, err := r.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Comments = comments

	return d, nil
}

func (r *DiscussionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM discussions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check discussion: %w", err)
	}
	return exists, nil
}

func (r *DiscussionRepository) Create(ctx context.Context, d *models.Discussion) (*models.Discussion, error) {
	d.ID = newID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO discussions (id, title, content, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + discussionColumns

	created, err := scanDiscussionRow(r.pool.QueryRow(ctx, query,
		d.ID, d.Title, d.Content, d.Author, d.CreatedAt, d.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}

	return created, nil
}

// Delete removes a discussion; its comments go with it via ON DELETE CASCADE.
func (r *DiscussionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discussions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discussion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListComments returns a discussion's comments oldest first.
func (r *DiscussionRepository) ListComments(ctx context.Context, discussionID string) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE discussion_id = $1 ORDER BY created_at ASC, id ASC`,
		discussionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}

	return scanCommentRows(rows)
}

// CreateComment inserts a comment. A missing parent discussion surfaces as
// models.ErrNotFound through the foreign key.
func (r *DiscussionRepository) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	c.ID = newID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO comments (id, discussion_id, content, author, author_email, author_avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + commentColumns

	created, err := scanCommentRow(r.pool.QueryRow(ctx, query,
		c.ID, c.DiscussionID, c.Content, c.Author,
		nullableString(c.AuthorEmail), nullableString(c.AuthorAvatar),
		c.CreatedAt, c.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return created, nil
}

func (r *DiscussionRepository) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
