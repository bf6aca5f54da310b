package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c4gt/bounce/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailFunc  func(ctx context.Context, email string) (bool, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// InMemoryUserRepository is a working UserRepository backed by a map
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[email]
	return ok, nil
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return nil, models.ErrAlreadyRegistered
	}
	cp := *user
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (r *InMemoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return models.ErrNotFound
}

// SentOTP is a captured one-time code email
type SentOTP struct {
	Email    string
	Code     string
	Purpose  models.OTPPurpose
	ValidFor time.Duration
}

// MockEmailService captures sent codes for test assertions
type MockEmailService struct {
	SendOTPEmailFunc func(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error

	mu   sync.Mutex
	Sent []SentOTP
}

func (m *MockEmailService) SendOTPEmail(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error {
	if m.SendOTPEmailFunc != nil {
		if err := m.SendOTPEmailFunc(ctx, email, code, purpose, validFor); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentOTP{Email: email, Code: code, Purpose: purpose, ValidFor: validFor})
	return nil
}

// LastSent returns the most recent captured email, or nil
func (m *MockEmailService) LastSent() *SentOTP {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// MockDiscussionRepository implements DiscussionRepository for testing
type MockDiscussionRepository struct {
	ListFunc          func(ctx context.Context, query string) ([]*models.Discussion, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.Discussion, error)
	ExistsFunc        func(ctx context.Context, id string) (bool, error)
	CreateFunc        func(ctx context.Context, d *models.Discussion) (*models.Discussion, error)
	DeleteFunc        func(ctx context.Context, id string) error
	ListCommentsFunc  func(ctx context.Context, discussionID string) ([]*models.Comment, error)
	CreateCommentFunc func(ctx context.Context, c *models.Comment) (*models.Comment, error)
	DeleteCommentFunc func(ctx context.Context, id string) error
}

func (m *MockDiscussionRepository) List(ctx context.Context, query string) ([]*models.Discussion, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, query)
	}
	return []*models.Discussion{}, nil
}

func (m *MockDiscussionRepository) GetByID(ctx context.Context, id string) (*models.Discussion, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDiscussionRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return false, nil
}

func (m *MockDiscussionRepository) Create(ctx context.Context, d *models.Discussion) (*models.Discussion, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	return nil, models.ErrInternalServer
}

func (m *MockDiscussionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockDiscussionRepository) ListComments(ctx context.Context, discussionID string) ([]*models.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, discussionID)
	}
	return []*models.Comment{}, nil
}

func (m *MockDiscussionRepository) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockDiscussionRepository) DeleteComment(ctx context.Context, id string) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, id)
	}
	return nil
}

// MockLevelCommentRepository implements LevelCommentRepository for testing
type MockLevelCommentRepository struct {
	ListByLevelFunc func(ctx context.Context, levelID string) ([]*models.LevelComment, error)
	CreateFunc      func(ctx context.Context, c *models.LevelComment) (*models.LevelComment, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockLevelCommentRepository) ListByLevel(ctx context.Context, levelID string) ([]*models.LevelComment, error) {
	if m.ListByLevelFunc != nil {
		return m.ListByLevelFunc(ctx, levelID)
	}
	return []*models.LevelComment{}, nil
}

func (m *MockLevelCommentRepository) Create(ctx context.Context, c *models.LevelComment) (*models.LevelComment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockLevelCommentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
