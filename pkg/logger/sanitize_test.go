package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"alice@example.com", "a****@*******.com"},
		{"b@mail.co.uk", "b@****.**.uk"},
		{"user@localhost", "u***@localhost"},
		{"not-an-email", "[invalid-email]"},
		{"a@b@c", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizedEmail(tt.in))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("email=a@example.com"))
	assert.True(t, SanitizeQueryString("Password=x"))
	assert.True(t, SanitizeQueryString("q=dns&otp=123456"))
	assert.False(t, SanitizeQueryString("q=dns"))
	assert.False(t, SanitizeQueryString("q=email+tips"), "values are not keys")
	assert.False(t, SanitizeQueryString(""))
}
