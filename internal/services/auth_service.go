package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c4gt/bounce/internal/models"
	pkgauth "github.com/c4gt/bounce/pkg/auth"
	pkglogger "github.com/c4gt/bounce/pkg/logger"
)

// AuthService handles registration, login and password reset. Every
// credential mutation is gated by a one-time code.
type AuthService struct {
	repo   UserRepository
	otp    *OTPService
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, otp *OTPService, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		otp:    otp,
		logger: logger,
		audit:  pkglogger.NewAuditLogger(logger),
	}
}

// hashPassword maps password policy failures to ErrBadRequest
func hashPassword(password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	return pkgauth.HashPassword(password)
}

// checkPassword rejects passwords bcrypt cannot hash. It runs before a code is
// consumed so a rejected password leaves the code usable.
func checkPassword(password string) error {
	if err := pkgauth.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	return nil
}

// recordOTP audits an issuance or validation outcome for email
func (s *AuthService) recordOTP(ctx context.Context, eventType, email string, err error) {
	event := pkglogger.AuditEvent{EventType: eventType, Email: email, Success: err == nil}
	if err != nil {
		event.FailureReason = err.Error()
	}
	s.audit.Record(ctx, event)
}

// SendRegistrationOTP emails a registration code unless the email is taken.
func (s *AuthService) SendRegistrationOTP(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return models.ErrAlreadyRegistered
	}

	_, err = s.otp.Issue(ctx, models.RegistrationIdentifier(email), email, models.OTPPurposeRegistration)
	s.recordOTP(ctx, pkglogger.EventOTPIssued, email, err)
	return err
}

// VerifyAndRegister consumes a registration code and creates the account.
func (s *AuthService) VerifyAndRegister(ctx context.Context, email, code, name, password string) (*models.User, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if err := s.otp.Validate(ctx, models.RegistrationIdentifier(email), code); err != nil {
		s.recordOTP(ctx, pkglogger.EventRegistration, email, err)
		return nil, err
	}

	// Someone may have registered between send-otp and verify-otp
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.ErrAlreadyRegistered
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyRegistered) {
			return nil, models.ErrAlreadyRegistered
		}
		s.logger.Error("failed to create user",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventRegistration,
		Email:     email,
		UserID:    user.ID,
		Success:   true,
	})

	return user, nil
}

// SendPasswordResetOTP emails a reset code to an existing account.
func (s *AuthService) SendPasswordResetOTP(ctx context.Context, email string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNoSuchAccount
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	_, err := s.otp.Issue(ctx, models.ResetIdentifier(email), email, models.OTPPurposePasswordReset)
	s.recordOTP(ctx, pkglogger.EventOTPIssued, email, err)
	return err
}

// ResetPassword consumes a reset code and replaces the account's password.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	if err := s.otp.Validate(ctx, models.ResetIdentifier(email), code); err != nil {
		s.recordOTP(ctx, pkglogger.EventPasswordReset, email, err)
		return err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.Record(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventPasswordReset,
		Email:     email,
		UserID:    user.ID,
		Success:   true,
	})
	return nil
}

// Login checks a password against the stored hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNoSuchAccount
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasPassword() {
		return nil, models.ErrNoPasswordSet
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.audit.Record(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventLogin,
			Email:         email,
			UserID:        user.ID,
			FailureReason: "invalid_password",
		})
		return nil, models.ErrInvalidPassword
	}

	s.audit.Record(ctx, pkglogger.AuditEvent{EventType: pkglogger.EventLogin, UserID: user.ID, Success: true})
	return user, nil
}
