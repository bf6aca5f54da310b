package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/c4gt/bounce/internal/models"
)

// LevelCommentRepository defines level comment persistence
type LevelCommentRepository interface {
	ListByLevel(ctx context.Context, levelID string) ([]*models.LevelComment, error)
	Create(ctx context.Context, c *models.LevelComment) (*models.LevelComment, error)
	Delete(ctx context.Context, id string) error
}

type LevelCommentDTO struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	LevelID      string    `json:"levelId"`
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"authorEmail,omitempty"`
	AuthorAvatar string    `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateLevelCommentInput struct {
	LevelID      string
	Content      string
	Author       string
	AuthorEmail  string
	AuthorAvatar string
}

func toLevelCommentDTO(c *models.LevelComment, _ int) LevelCommentDTO {
	return LevelCommentDTO{
		ID:           c.ID,
		Content:      c.Content,
		LevelID:      c.LevelID,
		Author:       c.Author,
		AuthorEmail:  c.AuthorEmail,
		AuthorAvatar: c.AuthorAvatar,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// LevelCommentService handles comments attached to game levels
type LevelCommentService struct {
	repo   LevelCommentRepository
	users  UserRepository
	logger *slog.Logger
}

// NewLevelCommentService creates a new LevelCommentService
func NewLevelCommentService(repo LevelCommentRepository, users UserRepository, logger *slog.Logger) *LevelCommentService {
	return &LevelCommentService{repo: repo, users: users, logger: logger}
}

// ListByLevel returns a level's comments oldest first
func (s *LevelCommentService) ListByLevel(ctx context.Context, levelID string) ([]LevelCommentDTO, error) {
	comments, err := s.repo.ListByLevel(ctx, levelID)
	if err != nil {
		s.logger.Error("failed to list level comments", slog.String("level_id", levelID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return lo.Map(comments, toLevelCommentDTO), nil
}

// Create stores a level comment, linking it to the registered user whose
// email matches authorEmail when there is one.
func (s *LevelCommentService) Create(ctx context.Context, in CreateLevelCommentInput) (*LevelCommentDTO, error) {
	content, err := requireText("content", in.Content, MaxCommentLen)
	if err != nil {
		return nil, err
	}
	levelID := strings.TrimSpace(in.LevelID)
	if levelID == "" {
		return nil, fmt.Errorf("%w: levelId is required", models.ErrBadRequest)
	}
	author, err := requireText("author", in.Author, MaxTitleLen)
	if err != nil {
		return nil, err
	}

	comment := &models.LevelComment{
		LevelID:      levelID,
		Content:      content,
		Author:       author,
		AuthorEmail:  strings.TrimSpace(in.AuthorEmail),
		AuthorAvatar: strings.TrimSpace(in.AuthorAvatar),
	}

	if comment.AuthorEmail != "" {
		comment.UserID = s.lookupUserID(ctx, comment.AuthorEmail)
	}

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		s.logger.Error("failed to create level comment", slog.String("level_id", levelID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	dto := toLevelCommentDTO(created, 0)
	return &dto, nil
}

// lookupUserID never fails the caller; an unknown or unreachable user just
// leaves the comment unlinked.
func (s *LevelCommentService) lookupUserID(ctx context.Context, email string) *string {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("failed to link level comment to user", slog.Any("error", err))
		}
		return nil
	}
	return &user.ID
}

func (s *LevelCommentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete level comment", slog.String("level_comment_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
