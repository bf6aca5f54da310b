package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/c4gt/bounce/internal/models"
	"github.com/c4gt/bounce/internal/services"
	pkghttp "github.com/c4gt/bounce/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParams attaches chi route parameters to a request
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) pkghttp.ErrorResponse {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedCode, resp.Code, "Error code mismatch")
	assert.NotEmpty(t, resp.Error, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SendRegistrationOTPFunc  func(ctx context.Context, email string) error
	VerifyAndRegisterFunc    func(ctx context.Context, email, code, name, password string) (*models.User, error)
	SendPasswordResetOTPFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, email, code, newPassword string) error
	LoginFunc                func(ctx context.Context, email, password string) (*models.User, error)
}

func (m *MockAuthService) SendRegistrationOTP(ctx context.Context, email string) error {
	if m.SendRegistrationOTPFunc == nil {
		return nil
	}
	return m.SendRegistrationOTPFunc(ctx, email)
}

func (m *MockAuthService) VerifyAndRegister(ctx context.Context, email, code, name, password string) (*models.User, error) {
	if m.VerifyAndRegisterFunc == nil {
		return nil, models.ErrOTPNotFound
	}
	return m.VerifyAndRegisterFunc(ctx, email, code, name, password)
}

func (m *MockAuthService) SendPasswordResetOTP(ctx context.Context, email string) error {
	if m.SendPasswordResetOTPFunc == nil {
		return nil
	}
	return m.SendPasswordResetOTPFunc(ctx, email)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if m.ResetPasswordFunc == nil {
		return nil
	}
	return m.ResetPasswordFunc(ctx, email, code, newPassword)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrNoSuchAccount
	}
	return m.LoginFunc(ctx, email, password)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetUserByEmailFunc func(ctx context.Context, email string) (*services.UserProfile, error)
	EmailExistsFunc    func(ctx context.Context, email string) (bool, error)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*services.UserProfile, error) {
	if m.GetUserByEmailFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByEmailFunc(ctx, email)
}

func (m *MockUserService) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFunc == nil {
		return false, nil
	}
	return m.EmailExistsFunc(ctx, email)
}

// MockDiscussionService implements DiscussionServiceInterface for testing
type MockDiscussionService struct {
	ListDiscussionsFunc  func(ctx context.Context, query string) ([]services.DiscussionDTO, error)
	GetDiscussionFunc    func(ctx context.Context, id string) (*services.DiscussionDTO, error)
	CreateDiscussionFunc func(ctx context.Context, in services.CreateDiscussionInput) (*services.DiscussionDTO, error)
	DeleteDiscussionFunc func(ctx context.Context, id string) error
	AddCommentFunc       func(ctx context.Context, in services.CreateCommentInput) (*services.CommentDTO, error)
	ListCommentsFunc     func(ctx context.Context, discussionID string) ([]services.CommentDTO, error)
	DeleteCommentFunc    func(ctx context.Context, id string) error
}

func (m *MockDiscussionService) ListDiscussions(ctx context.Context, query string) ([]services.DiscussionDTO, error) {
	if m.ListDiscussionsFunc == nil {
		return []services.DiscussionDTO{}, nil
	}
	return m.ListDiscussionsFunc(ctx, query)
}

func (m *MockDiscussionService) GetDiscussion(ctx context.Context, id string) (*services.DiscussionDTO, error) {
	if m.GetDiscussionFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetDiscussionFunc(ctx, id)
}

func (m *MockDiscussionService) CreateDiscussion(ctx context.Context, in services.CreateDiscussionInput) (*services.DiscussionDTO, error) {
	if m.CreateDiscussionFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateDiscussionFunc(ctx, in)
}

func (m *MockDiscussionService) DeleteDiscussion(ctx context.Context, id string) error {
	if m.DeleteDiscussionFunc == nil {
		return nil
	}
	return m.DeleteDiscussionFunc(ctx, id)
}

func (m *MockDiscussionService) AddComment(ctx context.Context, in services.CreateCommentInput) (*services.CommentDTO, error) {
	if m.AddCommentFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.AddCommentFunc(ctx, in)
}

func (m *MockDiscussionService) ListComments(ctx context.Context, discussionID string) ([]services.CommentDTO, error) {
	if m.ListCommentsFunc == nil {
		return []services.CommentDTO{}, nil
	}
	return m.ListCommentsFunc(ctx, discussionID)
}

func (m *MockDiscussionService) DeleteComment(ctx context.Context, id string) error {
	if m.DeleteCommentFunc == nil {
		return nil
	}
	return m.DeleteCommentFunc(ctx, id)
}

// MockLevelCommentService implements LevelCommentServiceInterface for testing
type MockLevelCommentService struct {
	ListByLevelFunc func(ctx context.Context, levelID string) ([]services.LevelCommentDTO, error)
	CreateFunc      func(ctx context.Context, in services.CreateLevelCommentInput) (*services.LevelCommentDTO, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockLevelCommentService) ListByLevel(ctx context.Context, levelID string) ([]services.LevelCommentDTO, error) {
	if m.ListByLevelFunc == nil {
		return []services.LevelCommentDTO{}, nil
	}
	return m.ListByLevelFunc(ctx, levelID)
}

func (m *MockLevelCommentService) Create(ctx context.Context, in services.CreateLevelCommentInput) (*services.LevelCommentDTO, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, in)
}

func (m *MockLevelCommentService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

// MockChecker implements Checker for testing
type MockChecker struct {
	Err error
}

func (m *MockChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
