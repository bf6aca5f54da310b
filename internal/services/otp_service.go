package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/c4gt/bounce/internal/models"
	pkglogger "github.com/c4gt/bounce/pkg/logger"
)

// OTPStore holds at most one one-time code record per identifier.
//
// Get returns models.ErrNotFound when no record exists. Expiry is not
// interpreted by the store; callers compare ExpiresAt themselves.
// Delete removes the stored record only while it is still the same issuance
// as record, and reports whether it did. A code re-issued after record was
// read is left in place.
type OTPStore interface {
	Put(ctx context.Context, record *models.OTPRecord) error
	Get(ctx context.Context, identifier string) (*models.OTPRecord, error)
	Delete(ctx context.Context, record *models.OTPRecord) (bool, error)
}

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTPCode returns a uniformly random six digit code.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}

// OTPService issues and validates one-time codes
type OTPService struct {
	store           OTPStore
	emailService    EmailService
	logger          *slog.Logger
	ttl             time.Duration
	deliveryTimeout time.Duration
	now             func() time.Time
	generate        func() (string, error)
}

type OTPOption func(*OTPService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) OTPOption {
	return func(s *OTPService) {
		s.now = now
	}
}

// WithCodeGenerator overrides how codes are produced.
func WithCodeGenerator(generate func() (string, error)) OTPOption {
	return func(s *OTPService) {
		s.generate = generate
	}
}

// NewOTPService creates a new OTPService
func NewOTPService(
	store OTPStore,
	emailService EmailService,
	logger *slog.Logger,
	ttl time.Duration,
	deliveryTimeout time.Duration,
	opts ...OTPOption,
) *OTPService {
	s := &OTPService{
		store:           store,
		emailService:    emailService,
		logger:          logger,
		ttl:             ttl,
		deliveryTimeout: deliveryTimeout,
		now:             time.Now,
		generate:        GenerateOTPCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a code for identifier and emails it to recipient. The code
// is stored only after delivery succeeds, replacing any earlier code for the
// same identifier.
func (s *OTPService) Issue(ctx context.Context, identifier, recipient string, purpose models.OTPPurpose) (*models.OTPRecord, error) {
	code, err := s.generate()
	if err != nil {
		s.logger.Error("failed to generate otp", slog.Any("error", err))
		return nil, err
	}

	record := &models.OTPRecord{
		Identifier: identifier,
		Code:       code,
		ExpiresAt:  s.now().Add(s.ttl),
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()

	if err := s.emailService.SendOTPEmail(sendCtx, recipient, code, purpose, s.ttl); err != nil {
		s.logger.Warn("otp delivery failed",
			slog.String("email", pkglogger.SanitizedEmail(recipient)),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrDeliveryFailure, err)
	}

	if err := s.store.Put(ctx, record); err != nil {
		s.logger.Error("failed to store otp",
			slog.String("email", pkglogger.SanitizedEmail(recipient)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	s.logger.Info("otp issued",
		slog.String("email", pkglogger.SanitizedEmail(recipient)),
		slog.String("purpose", string(purpose)),
		slog.Time("expires_at", record.ExpiresAt))

	return record, nil
}

// Validate checks code against the record stored for identifier. A matching
// code is consumed. An expired record is removed whatever code was submitted.
// A wrong code leaves the record in place.
func (s *OTPService) Validate(ctx context.Context, identifier, code string) error {
	record, err := s.store.Get(ctx, identifier)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load otp: %w", err)
	}

	if record.IsExpiredAt(s.now()) {
		if _, err := s.store.Delete(ctx, record); err != nil {
			s.logger.Error("failed to delete expired otp", slog.Any("error", err))
		}
		return models.ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return models.ErrOTPMismatch
	}

	deleted, err := s.store.Delete(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	if !deleted {
		// Consumed or replaced by a concurrent request between Get and Delete
		return models.ErrOTPNotFound
	}

	return nil
}
