package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/c4gt/bounce/internal/database"
	"github.com/c4gt/bounce/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LevelCommentRepository struct {
	pool *pgxpool.Pool
}

func NewLevelCommentRepository(db *database.DB) *LevelCommentRepository {
	return &LevelCommentRepository{pool: db.Pool}
}

const levelCommentColumns = `id, level_id, content, author, author_email, author_avatar, user_id, created_at, updated_at`

func scanLevelCommentRow(row rowScanner) (*models.LevelComment, error) {
	var c models.LevelComment
	var authorEmail, authorAvatar *string

	err := row.Scan(
		&c.ID, &c.LevelID, &c.Content, &c.Author, &authorEmail, &authorAvatar, &c.UserID,
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

func scanLevelCommentRows(rows pgx.Rows) ([]*models.LevelComment, error) {
	defer rows.Close()

	comments := make([]*models.LevelComment, 0)

	for rows.Next() {
		c, err := scanLevelCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating level comment rows: %w", err)
	}

	return comments, nil
}

// ListByLevel returns a level's comments oldest first.
func (r *LevelCommentRepository) ListByLevel(ctx context.Context, levelID string) ([]*models.LevelComment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+levelCommentColumns+` FROM level_comments WHERE level_id = $1 ORDER BY created_at ASC, id ASC`,
		levelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query level comments: %w", err)
	}

	return scanLevelCommentRows(rows)
}

func (r *LevelCommentRepository) Create(ctx context.Context, c *models.LevelComment) (*models.LevelComment, error) {
	c.ID = newID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO level_comments (id, level_id, content, author, author_email, author_avatar, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + levelCommentColumns

	created, err := scanLevelCommentRow(r.pool.QueryRow(ctx, query,
		c.ID, c.LevelID, c.Content, c.Author,
		nullableString(c.AuthorEmail), nullableString(c.AuthorAvatar), c.UserID,
		c.CreatedAt, c.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create level comment: %w", err)
	}

	return created, nil
}

func (r *LevelCommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM level_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete level comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
