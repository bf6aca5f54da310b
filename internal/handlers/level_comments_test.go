package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c4gt/bounce/internal/models"
	"github.com/c4gt/bounce/internal/services"
)

func TestLevelCommentHandler_ListByLevel(t *testing.T) {
	h := NewLevelCommentHandler(&MockLevelCommentService{
		ListByLevelFunc: func(ctx context.Context, levelID string) ([]services.LevelCommentDTO, error) {
			return []services.LevelCommentDTO{{ID: "l1", LevelID: levelID}}, nil
		},
	})

	w := httptest.NewRecorder()
	req := WithURLParams(httptest.NewRequest("GET", "/api/level-comments/LEVEL_DNS", nil), map[string]string{"id": "LEVEL_DNS"})
	h.ListByLevel(w, req)

	var resp []services.LevelCommentDTO
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "LEVEL_DNS", resp[0].LevelID)
}

func TestLevelCommentHandler_Create(t *testing.T) {
	var got services.CreateLevelCommentInput
	h := NewLevelCommentHandler(&MockLevelCommentService{
		CreateFunc: func(ctx context.Context, in services.CreateLevelCommentInput) (*services.LevelCommentDTO, error) {
			got = in
			return &services.LevelCommentDTO{ID: "l1", LevelID: in.LevelID, Content: in.Content, Author: in.Author}, nil
		},
	})

	w := httptest.NewRecorder()
	h.Create(w, NewTestRequest(t, "POST", "/api/level-comments", CreateLevelCommentRequest{
		LevelID: "LEVEL_DNS", Content: "nice", Author: "Bob", AuthorEmail: "bob@example.com",
	}))

	var resp services.LevelCommentDTO
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "l1", resp.ID)
	assert.Equal(t, "bob@example.com", got.AuthorEmail)

	w = httptest.NewRecorder()
	h.Create(w, NewTestRequest(t, "POST", "/api/level-comments", CreateLevelCommentRequest{Content: "nice", Author: "Bob"}))
	resp2 := AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	assert.Contains(t, resp2.Error, "levelId")
}

func TestLevelCommentHandler_Delete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", models.ErrNotFound, http.StatusNotFound},
		{"store failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLevelCommentHandler(&MockLevelCommentService{
				DeleteFunc: func(ctx context.Context, id string) error { return tt.err },
			})

			w := httptest.NewRecorder()
			h.Delete(w, WithURLParams(httptest.NewRequest("DELETE", "/api/level-comments/l1", nil), map[string]string{"id": "l1"}))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler(&MockChecker{}).Health(w, httptest.NewRequest("GET", "/health", nil))
	var resp HealthResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "up", resp.Database)

	w = httptest.NewRecorder()
	NewHealthHandler(&MockChecker{Err: errors.New("conn refused")}).Health(w, httptest.NewRequest("GET", "/health", nil))
	AssertJSONResponse(t, w, http.StatusServiceUnavailable, &resp)
	assert.Equal(t, "unhealthy", resp.Status)
}
