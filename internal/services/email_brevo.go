package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/c4gt/bounce/internal/models"
	pkglogger "github.com/c4gt/bounce/pkg/logger"
)

const brevoSendPath = "/v3/smtp/email"

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}

// BrevoEmailService sends emails through the Brevo transactional email API
type BrevoEmailService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	senderName  string
	senderEmail string
	logger      *slog.Logger
}

// NewBrevoEmailService creates a Brevo sender whose requests never outlive timeout
func NewBrevoEmailService(baseURL, apiKey, senderName, senderEmail string, timeout time.Duration, logger *slog.Logger) *BrevoEmailService {
	return &BrevoEmailService{
		client:      &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		logger:      logger,
	}
}

// SendOTPEmail sends a one-time code email via Brevo
func (s *BrevoEmailService) SendOTPEmail(ctx context.Context, email, code string, purpose models.OTPPurpose, validFor time.Duration) error {
	msg := renderOTPEmail(code, purpose, validFor)

	payload, err := json.Marshal(brevoSendRequest{
		Sender:      brevoContact{Name: s.senderName, Email: s.senderEmail},
		To:          []brevoContact{{Email: email}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+brevoSendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("failed to reach brevo",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("brevo rejected email",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return fmt.Errorf("brevo returned status %d", resp.StatusCode)
	}

	var out brevoSendResponse
	_ = json.Unmarshal(body, &out)

	s.logger.Info("otp email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("message_id", out.MessageID))

	return nil
}
