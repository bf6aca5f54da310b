package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/c4gt/bounce/internal/models"
)

// LogEmailService writes codes to the log instead of sending mail.
// Only for local development; config rejects it in production.
type LogEmailService struct {
	logger *slog.Logger
}

func NewLogEmailService(logger *slog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) SendOTPEmail(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error {
	s.logger.InfoContext(ctx, "otp email (log sink)",
		slog.String("email", email),
		slog.String("purpose", string(purpose)),
		slog.String("code", code),
		slog.Duration("valid_for", validFor))
	return nil
}
