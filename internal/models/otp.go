package models

import (
	"time"
)

// ResetIdentifierPrefix namespaces password-reset codes so they never collide
// with registration codes issued for the same email.
const ResetIdentifierPrefix = "reset_"

// OTPRecord is a one-time code issued for an identifier.
type OTPRecord struct {
	Identifier string    `json:"identifier"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpiredAt reports whether the record's deadline has passed at t.
func (r *OTPRecord) IsExpiredAt(t time.Time) bool {
	return t.After(r.ExpiresAt)
}

// SameIssue reports whether other is the same issuance of the code, rather
// than a later one stored under the same identifier.
func (r *OTPRecord) SameIssue(other *OTPRecord) bool {
	return r.Identifier == other.Identifier &&
		r.Code == other.Code &&
		r.ExpiresAt.Equal(other.ExpiresAt)
}

// RegistrationIdentifier returns the OTP key for the registration flow.
func RegistrationIdentifier(email string) string {
	return email
}

// ResetIdentifier returns the OTP key for the password-reset flow.
func ResetIdentifier(email string) string {
	return ResetIdentifierPrefix + email
}

// OTPPurpose selects the email template used when delivering a code.
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)
