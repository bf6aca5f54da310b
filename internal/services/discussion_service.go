package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/c4gt/bounce/internal/models"
)

const (
	MaxTitleLen             = 200
	MaxDiscussionContentLen = 5000
	MaxCommentLen           = 2000
)

// DiscussionRepository defines discussion and comment persistence
type DiscussionRepository interface {
	List(ctx context.Context, query string) ([]*models.Discussion, error)
	GetByID(ctx context.Context, id string) (*models.Discussion, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, d *models.Discussion) (*models.Discussion, error)
	Delete(ctx context.Context, id string) error
	ListComments(ctx context.Context, discussionID string) ([]*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type CommentDTO struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"authorEmail,omitempty"`
	AuthorAvatar string    `json:"authorAvatar,omitempty"`
	DiscussionID string    `json:"discussionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DiscussionDTO struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Author       string       `json:"author"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Comments     []CommentDTO `json:"comments"`
	CommentCount int          `json:"commentCount"`
}

type CreateDiscussionInput struct {
	Title   string
	Content string
	Author  string
}

type CreateCommentInput struct {
	DiscussionID string
	Content      string
	Author       string
	AuthorEmail  string
	AuthorAvatar string
}

func toCommentDTO(c *models.Comment, _ int) CommentDTO {
	return CommentDTO{
		ID:           c.ID,
		Content:      c.Content,
		Author:       c.Author,
		AuthorEmail:  c.AuthorEmail,
		AuthorAvatar: c.AuthorAvatar,
		DiscussionID: c.DiscussionID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toDiscussionDTO(d *models.Discussion, _ int) DiscussionDTO {
	comments := lo.Map(d.Comments, toCommentDTO)
	return DiscussionDTO{
		ID:           d.ID,
		Title:        d.Title,
		Content:      d.Content,
		Author:       d.Author,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Comments:     comments,
		CommentCount: len(comments),
	}
}

// requireText trims s and checks it is non-blank and at most max characters.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", models.ErrBadRequest, field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", fmt.Errorf("%w: %s must be at most %d characters", models.ErrBadRequest, field, max)
	}
	return s, nil
}

// DiscussionService handles forum discussions and their comments
type DiscussionService struct {
	repo   DiscussionRepository
	logger *slog.Logger
}

// NewDiscussionService creates a new DiscussionService
func NewDiscussionService(repo DiscussionRepository, logger *slog.Logger) *DiscussionService {
	return &DiscussionService{repo: repo, logger: logger}
}

// ListDiscussions returns discussions newest first, optionally filtered by keyword
func (s *DiscussionService) ListDiscussions(ctx context.Context, query string) ([]DiscussionDTO, error) {
	discussions, err := s.repo.List(ctx, query)
	if err != nil {
		s.logger.Error("failed to list discussions", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return lo.Map(discussions, toDiscussionDTO), nil
}

func (s *DiscussionService) GetDiscussion(ctx context.Context, id string) (*DiscussionDTO, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get discussion", slog.String("discussion_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	dto := toDiscussionDTO(d, 0)
	return &dto, nil
}

func (s *DiscussionService) CreateDiscussion(ctx context.Context, in CreateDiscussionInput) (*DiscussionDTO, error) {
	title, err := requireText("title", in.Title, MaxTitleLen)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", in.Content, MaxDiscussionContentLen)
	if err != nil {
		return nil, err
	}
	author, err := requireText("author", in.Author, MaxTitleLen)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.Create(ctx, &models.Discussion{Title: title, Content: content, Author: author})
	if err != nil {
		s.logger.Error("failed to create discussion", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("discussion created", slog.String("discussion_id", d.ID))

	dto := toDiscussionDTO(d, 0)
	return &dto, nil
}

// DeleteDiscussion removes a discussion together with its comments
func (s *DiscussionService) DeleteDiscussion(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete discussion", slog.String("discussion_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("discussion deleted", slog.String("discussion_id", id))
	return nil
}

// AddComment attaches a comment to an existing discussion
func (s *DiscussionService) AddComment(ctx context.Context, in CreateCommentInput) (*CommentDTO, error) {
	content, err := requireText("content", in.Content, MaxCommentLen)
	if err != nil {
		return nil, err
	}
	author, err := requireText("author", in.Author, MaxTitleLen)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DiscussionID) == "" {
		return nil, fmt.Errorf("%w: discussionId is required", models.ErrBadRequest)
	}

	exists, err := s.repo.Exists(ctx, in.DiscussionID)
	if err != nil {
		s.logger.Error("failed to check discussion", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !exists {
		return nil, models.ErrNotFound
	}

	c, err := s.repo.CreateComment(ctx, &models.Comment{
		DiscussionID: in.DiscussionID,
		Content:      content,
		Author:       author,
		AuthorEmail:  strings.TrimSpace(in.AuthorEmail),
		AuthorAvatar: strings.TrimSpace(in.AuthorAvatar),
	})
	if err != nil {
		// Discussion deleted after the existence check
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to create comment", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	dto := toCommentDTO(c, 0)
	return &dto, nil
}

// ListComments returns a discussion's comments oldest first
func (s *DiscussionService) ListComments(ctx context.Context, discussionID string) ([]CommentDTO, error) {
	comments, err := s.repo.ListComments(ctx, discussionID)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("discussion_id", discussionID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return lo.Map(comments, toCommentDTO), nil
}

func (s *DiscussionService) DeleteComment(ctx context.Context, id string) error {
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete comment", slog.String("comment_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
