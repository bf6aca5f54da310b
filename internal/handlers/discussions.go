package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/c4gt/bounce/internal/models"
	"github.com/c4gt/bounce/internal/services"
	pkghttp "github.com/c4gt/bounce/pkg/http"
)

// DiscussionServiceInterface defines the interface for discussion business logic
type DiscussionServiceInterface interface {
	ListDiscussions(ctx context.Context, query string) ([]services.DiscussionDTO, error)
	GetDiscussion(ctx context.Context, id string) (*services.DiscussionDTO, error)
	CreateDiscussion(ctx context.Context, in services.CreateDiscussionInput) (*services.DiscussionDTO, error)
	DeleteDiscussion(ctx context.Context, id string) error
	AddComment(ctx context.Context, in services.CreateCommentInput) (*services.CommentDTO, error)
	ListComments(ctx context.Context, discussionID string) ([]services.CommentDTO, error)
	DeleteComment(ctx context.Context, id string) error
}

// DiscussionHandler handles forum discussion HTTP requests
type DiscussionHandler struct {
	service DiscussionServiceInterface
}

func NewDiscussionHandler(service DiscussionServiceInterface) *DiscussionHandler {
	return &DiscussionHandler{service: service}
}

type CreateDiscussionRequest struct {
	Title   string `json:"title" validate:"notblank,max=200"`
	Content string `json:"content" validate:"notblank,max=5000"`
	Author  string `json:"author" validate:"notblank,max=200"`
}

type CreateCommentRequest struct {
	Content      string `json:"content" validate:"notblank,max=2000"`
	Author       string `json:"author" validate:"notblank,max=200"`
	AuthorEmail  string `json:"authorEmail" validate:"omitempty,email"`
	AuthorAvatar string `json:"authorAvatar" validate:"omitempty,max=2048"`
	DiscussionID string `json:"discussionId" validate:"notblank"`
}

// writeCRUDError maps service errors shared by the CRUD handlers.
func writeCRUDError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFound)
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, badRequestMessage(err))
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// List handles GET /discussions
func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	discussions, err := h.service.ListDiscussions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeCRUDError(w, err, "")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, discussions)
}

// Get handles GET /discussions/{id}
func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	discussion, err := h.service.GetDiscussion(r.Context(), id)
	if err != nil {
		writeCRUDError(w, err, "Discussion not found with id: "+id)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, discussion)
}

// Create handles POST /discussions
func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDiscussionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	discussion, err := h.service.CreateDiscussion(r.Context(), services.CreateDiscussionInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	})
	if err != nil {
		writeCRUDError(w, err, "")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, discussion)
}

// Delete handles DELETE /discussions/{id}
func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteDiscussion(r.Context(), id); err != nil {
		writeCRUDError(w, err, "Discussion not found with id: "+id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /discussions/{id}/comments
func (h *DiscussionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCRUDError(w, err, "")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, comments)
}

// AddComment handles POST /discussions/comments
func (h *DiscussionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), services.CreateCommentInput{
		DiscussionID: req.DiscussionID,
		Content:      req.Content,
		Author:       req.Author,
		AuthorEmail:  req.AuthorEmail,
		AuthorAvatar: req.AuthorAvatar,
	})
	if err != nil {
		writeCRUDError(w, err, "Discussion not found with id: "+req.DiscussionID)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /discussions/comments/{id}
func (h *DiscussionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteComment(r.Context(), id); err != nil {
		writeCRUDError(w, err, "Comment not found with id: "+id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
