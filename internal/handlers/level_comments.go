package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/c4gt/bounce/internal/services"
	pkghttp "github.com/c4gt/bounce/pkg/http"
)

// LevelCommentServiceInterface defines the interface for level comment business logic
type LevelCommentServiceInterface interface {
	ListByLevel(ctx context.Context, levelID string) ([]services.LevelCommentDTO, error)
	Create(ctx context.Context, in services.CreateLevelCommentInput) (*services.LevelCommentDTO, error)
	Delete(ctx context.Context, id string) error
}

// LevelCommentHandler handles per-level comment HTTP requests
type LevelCommentHandler struct {
	service LevelCommentServiceInterface
}

func NewLevelCommentHandler(service LevelCommentServiceInterface) *LevelCommentHandler {
	return &LevelCommentHandler{service: service}
}

type CreateLevelCommentRequest struct {
	Content      string `json:"content" validate:"notblank,max=2000"`
	LevelID      string `json:"levelId" validate:"notblank,max=100"`
	Author       string `json:"author" validate:"notblank,max=200"`
	AuthorEmail  string `json:"authorEmail" validate:"omitempty,email"`
	AuthorAvatar string `json:"authorAvatar" validate:"omitempty,max=2048"`
}

// ListByLevel handles GET /level-comments/{id}, where id is the level key
func (h *LevelCommentHandler) ListByLevel(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListByLevel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCRUDError(w, err, "")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, comments)
}

// Create handles POST /level-comments
func (h *LevelCommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLevelCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.service.Create(r.Context(), services.CreateLevelCommentInput{
		LevelID:      req.LevelID,
		Content:      req.Content,
		Author:       req.Author,
		AuthorEmail:  req.AuthorEmail,
		AuthorAvatar: req.AuthorAvatar,
	})
	if err != nil {
		writeCRUDError(w, err, "")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, comment)
}

// Delete handles DELETE /level-comments/{id}
func (h *LevelCommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeCRUDError(w, err, "Comment not found with id: "+id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
