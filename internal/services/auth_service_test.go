package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4gt/bounce/internal/models"
	"github.com/c4gt/bounce/internal/repositories"
	pkgauth "github.com/c4gt/bounce/pkg/auth"
)

type authFixture struct {
	svc   *AuthService
	users *InMemoryUserRepository
	store *repositories.MemoryOTPStore
	email *MockEmailService
	clock *fakeClock
}

func newAuthFixture(code string) *authFixture {
	users := NewInMemoryUserRepository()
	store := repositories.NewMemoryOTPStore()
	email := &MockEmailService{}
	clock := &fakeClock{now: time.Now()}
	otp := newTestOTPService(store, email, clock, WithCodeGenerator(fixedCode(code)))

	return &authFixture{
		svc:   NewAuthService(users, otp, testLogger()),
		users: users,
		store: store,
		email: email,
		clock: clock,
	}
}

func seedUser(t *testing.T, users *InMemoryUserRepository, email, password string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Name: "Seed"}
	if password != "" {
		hash, err := pkgauth.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	created, err := users.Create(context.Background(), user)
	require.NoError(t, err)
	return created
}

func TestAuthService_RegistrationAndLogin_EndToEnd(t *testing.T) {
	f := newAuthFixture("123456")
	ctx := context.Background()

	require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))

	stored, err := f.store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", stored.Code)

	user, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Ann", user.Name)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	loggedIn, err := f.svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidPassword)
}

func TestAuthService_SendRegistrationOTP_AlreadyRegistered(t *testing.T) {
	f := newAuthFixture("123456")
	seedUser(t, f.users, "a@x.com", "pw1")

	err := f.svc.SendRegistrationOTP(context.Background(), "a@x.com")

	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
	assert.Equal(t, 0, f.store.Len(), "no OTP should be stored")
	assert.Nil(t, f.email.LastSent(), "no OTP should be sent")
}

func TestAuthService_SendRegistrationOTP_DeliveryFailure(t *testing.T) {
	f := newAuthFixture("123456")
	f.email.SendOTPEmailFunc = func(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error {
		return errors.New("brevo 500")
	}

	err := f.svc.SendRegistrationOTP(context.Background(), "a@x.com")

	assert.ErrorIs(t, err, models.ErrDeliveryFailure)
	assert.Equal(t, 0, f.store.Len())
}

func TestAuthService_VerifyAndRegister_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no otp", func(t *testing.T) {
		f := newAuthFixture("123456")
		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		assert.ErrorIs(t, err, models.ErrOTPNotFound)
	})

	t.Run("wrong code keeps otp", func(t *testing.T) {
		f := newAuthFixture("123456")
		require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))

		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "999999", "Ann", "pw1")
		assert.ErrorIs(t, err, models.ErrOTPMismatch)

		_, err = f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		assert.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		f := newAuthFixture("123456")
		require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))
		f.clock.Advance(11 * time.Minute)

		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		assert.ErrorIs(t, err, models.ErrOTPExpired)

		exists, _ := f.users.ExistsByEmail(ctx, "a@x.com")
		assert.False(t, exists)
	})

	t.Run("registered in between", func(t *testing.T) {
		f := newAuthFixture("123456")
		require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))
		seedUser(t, f.users, "a@x.com", "other")

		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
	})

	t.Run("unique violation at insert", func(t *testing.T) {
		users := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				return nil, models.ErrAlreadyRegistered
			},
		}
		store := repositories.NewMemoryOTPStore()
		otp := newTestOTPService(store, &MockEmailService{}, &fakeClock{now: time.Now()}, WithCodeGenerator(fixedCode("123456")))
		svc := NewAuthService(users, otp, testLogger())

		require.NoError(t, svc.SendRegistrationOTP(ctx, "a@x.com"))
		_, err := svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
	})

	t.Run("empty password", func(t *testing.T) {
		f := newAuthFixture("123456")
		require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))

		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "")
		assert.ErrorIs(t, err, models.ErrBadRequest)
		assert.Equal(t, 1, f.store.Len(), "rejected password must not consume the code")
	})

	t.Run("password over bcrypt limit keeps otp", func(t *testing.T) {
		f := newAuthFixture("123456")
		require.NoError(t, f.svc.SendRegistrationOTP(ctx, "a@x.com"))

		// 40 runes but 80 bytes
		_, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", strings.Repeat("é", 40))
		assert.ErrorIs(t, err, models.ErrBadRequest)

		_, err = f.store.Get(ctx, models.RegistrationIdentifier("a@x.com"))
		require.NoError(t, err, "rejected password must not consume the code")

		user, err := f.svc.VerifyAndRegister(ctx, "a@x.com", "123456", "Ann", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})
}

func TestAuthService_RegistrationCodeDoesNotResetPassword(t *testing.T) {
	f := newAuthFixture("123456")
	ctx := context.Background()
	seedUser(t, f.users, "a@x.com", "old")

	// A registration-channel record for the same email must not satisfy the reset channel
	require.NoError(t, f.store.Put(ctx, &models.OTPRecord{
		Identifier: models.RegistrationIdentifier("a@x.com"),
		Code:       "123456",
		ExpiresAt:  f.clock.now.Add(time.Minute),
	}))

	err := f.svc.ResetPassword(ctx, "a@x.com", "123456", "new")
	assert.ErrorIs(t, err, models.ErrOTPNotFound)
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthFixture("654321")
	ctx := context.Background()
	seedUser(t, f.users, "a@x.com", "old")

	require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "a@x.com"))

	_, err := f.store.Get(ctx, "reset_a@x.com")
	require.NoError(t, err, "reset code should be stored under the reset identifier")
	_, err = f.store.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	sent := f.email.LastSent()
	require.NotNil(t, sent)
	assert.Equal(t, models.OTPPurposePasswordReset, sent.Purpose)

	require.NoError(t, f.svc.ResetPassword(ctx, "a@x.com", "654321", "new"))

	_, err = f.svc.Login(ctx, "a@x.com", "new")
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "old")
	assert.ErrorIs(t, err, models.ErrInvalidPassword)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@x.com", "654321", "again"), models.ErrOTPNotFound)
}

func TestAuthService_PasswordReset_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account", func(t *testing.T) {
		f := newAuthFixture("654321")
		assert.ErrorIs(t, f.svc.SendPasswordResetOTP(ctx, "ghost@x.com"), models.ErrNoSuchAccount)
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("expired", func(t *testing.T) {
		f := newAuthFixture("654321")
		seedUser(t, f.users, "a@x.com", "old")
		require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "a@x.com"))
		f.clock.Advance(11 * time.Minute)

		assert.ErrorIs(t, f.svc.ResetPassword(ctx, "a@x.com", "654321", "new"), models.ErrOTPExpired)
	})

	t.Run("account vanished", func(t *testing.T) {
		f := newAuthFixture("654321")
		require.NoError(t, f.store.Put(ctx, &models.OTPRecord{
			Identifier: models.ResetIdentifier("gone@x.com"),
			Code:       "654321",
			ExpiresAt:  f.clock.now.Add(time.Minute),
		}))

		assert.ErrorIs(t, f.svc.ResetPassword(ctx, "gone@x.com", "654321", "new"), models.ErrNotFound)
	})

	t.Run("password over bcrypt limit keeps otp", func(t *testing.T) {
		f := newAuthFixture("654321")
		seedUser(t, f.users, "a@x.com", "old")
		require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "a@x.com"))

		err := f.svc.ResetPassword(ctx, "a@x.com", "654321", strings.Repeat("é", 40))
		assert.ErrorIs(t, err, models.ErrBadRequest)

		_, err = f.store.Get(ctx, models.ResetIdentifier("a@x.com"))
		require.NoError(t, err, "rejected password must not consume the code")

		require.NoError(t, f.svc.ResetPassword(ctx, "a@x.com", "654321", "new"))
		_, err = f.svc.Login(ctx, "a@x.com", "new")
		assert.NoError(t, err)
	})
}

func TestAuthService_Login_Errors(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture("123456")
	seedUser(t, f.users, "nopw@x.com", "")

	_, err := f.svc.Login(ctx, "ghost@x.com", "pw")
	assert.ErrorIs(t, err, models.ErrNoSuchAccount)

	_, err = f.svc.Login(ctx, "nopw@x.com", "pw")
	assert.ErrorIs(t, err, models.ErrNoPasswordSet)
}
