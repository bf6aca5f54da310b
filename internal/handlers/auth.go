package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/c4gt/bounce/internal/models"
	"github.com/c4gt/bounce/internal/services"
	pkghttp "github.com/c4gt/bounce/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	SendRegistrationOTP(ctx context.Context, email string) error
	VerifyAndRegister(ctx context.Context, email, code, name, password string) (*models.User, error)
	SendPasswordResetOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// UserServiceInterface defines the interface for user lookups
type UserServiceInterface interface {
	GetUserByEmail(ctx context.Context, email string) (*services.UserProfile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service     AuthServiceInterface
	userService UserServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, userService UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:     service,
		userService: userService,
	}
}

// Request DTOs

// EmailRequest is the body for send-otp and forgot-password
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest represents the request body for completing registration
type VerifyOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"notblank"`
	Name     string `json:"name" validate:"notblank,max=100"`
	Password string `json:"password" validate:"notblank,max=72"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"notblank"`
}

// ResetPasswordRequest represents the request body for password reset
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"notblank"`
	NewPassword string `json:"newPassword" validate:"notblank,max=72"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// EmailExistsResponse is the body of check-email
type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}

// otpMessages are the per-flow texts for OTP failures
type otpMessages struct {
	notFound string
	expired  string
	mismatch string
}

var (
	registrationOTPMessages = otpMessages{
		notFound: "No OTP found for this email. Please request a new OTP.",
		expired:  "OTP has expired. Please request a new OTP.",
		mismatch: "Invalid OTP. Please try again.",
	}
	resetOTPMessages = otpMessages{
		notFound: "No reset request found. Please request a new OTP.",
		expired:  "OTP has expired. Please request a new OTP.",
		mismatch: "Invalid OTP. Please try again.",
	}
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// writeOTPError maps OTP workflow errors to responses. It reports false when
// err is not an OTP error.
func writeOTPError(w http.ResponseWriter, err error, msgs otpMessages) bool {
	switch {
	case errors.Is(err, models.ErrOTPNotFound):
		pkghttp.WriteError(w, http.StatusNotFound, "otp_not_found", msgs.notFound)
	case errors.Is(err, models.ErrOTPExpired):
		pkghttp.WriteUnprocessable(w, "otp_expired", msgs.expired)
	case errors.Is(err, models.ErrOTPMismatch):
		pkghttp.WriteError(w, http.StatusBadRequest, "otp_mismatch", msgs.mismatch)
	case errors.Is(err, models.ErrDeliveryFailure):
		pkghttp.WriteBadGateway(w, "Failed to send OTP email. Please try again later.")
	default:
		return false
	}
	return true
}

// badRequestMessage returns the text after the sentinel for wrapped
// models.ErrBadRequest errors.
func badRequestMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// SendOTP handles POST /auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	email := normalizeEmail(req.Email)

	if err := h.service.SendRegistrationOTP(r.Context(), email); err != nil {
		if writeOTPError(w, err, registrationOTPMessages) {
			return
		}
		if errors.Is(err, models.ErrAlreadyRegistered) {
			pkghttp.WriteConflict(w, "User with this email already exists. Please login instead.")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent successfully to " + email})
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	email := normalizeEmail(req.Email)

	user, err := h.service.VerifyAndRegister(r.Context(), email, strings.TrimSpace(req.OTP), strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		if writeOTPError(w, err, registrationOTPMessages) {
			return
		}
		switch {
		case errors.Is(err, models.ErrAlreadyRegistered):
			pkghttp.WriteConflict(w, "User with this email already exists. Please login instead.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.ToUserProfile(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoSuchAccount):
			pkghttp.WriteNotFound(w, "User not found. Please register first.")
		case errors.Is(err, models.ErrNoPasswordSet):
			pkghttp.WriteError(w, http.StatusBadRequest, "no_password_set", "No password set. Please use 'Forgot Password' to set one.")
		case errors.Is(err, models.ErrInvalidPassword):
			pkghttp.WriteUnauthorized(w, "Invalid password. Please try again.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.ToUserProfile(user))
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	email := normalizeEmail(req.Email)

	if err := h.service.SendPasswordResetOTP(r.Context(), email); err != nil {
		if writeOTPError(w, err, resetOTPMessages) {
			return
		}
		if errors.Is(err, models.ErrNoSuchAccount) {
			pkghttp.WriteNotFound(w, "No account found with this email.")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password reset OTP sent to " + email})
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.ResetPassword(r.Context(), normalizeEmail(req.Email), strings.TrimSpace(req.OTP), req.NewPassword)
	if err != nil {
		if writeOTPError(w, err, resetOTPMessages) {
			return
		}
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}

// CheckEmail handles GET /auth/check-email?email=
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		pkghttp.WriteBadRequest(w, "email query parameter is required")
		return
	}

	exists, err := h.userService.EmailExists(r.Context(), email)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, EmailExistsResponse{Exists: exists})
}

// GetUser handles GET /auth/user/{email}
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(chi.URLParam(r, "email"))
	if email == "" {
		pkghttp.WriteBadRequest(w, "email is required")
		return
	}

	profile, err := h.userService.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found.")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}
