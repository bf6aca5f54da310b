package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTPRecord_IsExpiredAt(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	record := &OTPRecord{Identifier: "a@x.com", Code: "123456", ExpiresAt: deadline}

	assert.False(t, record.IsExpiredAt(deadline.Add(-time.Second)))
	assert.False(t, record.IsExpiredAt(deadline), "the deadline itself is still valid")
	assert.True(t, record.IsExpiredAt(deadline.Add(time.Nanosecond)))
}

func TestOTPRecord_SameIssue(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	record := &OTPRecord{Identifier: "a@x.com", Code: "123456", ExpiresAt: deadline}

	assert.True(t, record.SameIssue(&OTPRecord{Identifier: "a@x.com", Code: "123456", ExpiresAt: deadline.In(time.FixedZone("X", 3600))}))
	assert.False(t, record.SameIssue(&OTPRecord{Identifier: "a@x.com", Code: "654321", ExpiresAt: deadline}))
	assert.False(t, record.SameIssue(&OTPRecord{Identifier: "a@x.com", Code: "123456", ExpiresAt: deadline.Add(time.Minute)}))
	assert.False(t, record.SameIssue(&OTPRecord{Identifier: "reset_a@x.com", Code: "123456", ExpiresAt: deadline}))
}

func TestIdentifiers_AreDisjoint(t *testing.T) {
	assert.Equal(t, "a@x.com", RegistrationIdentifier("a@x.com"))
	assert.Equal(t, "reset_a@x.com", ResetIdentifier("a@x.com"))
	assert.NotEqual(t, RegistrationIdentifier("a@x.com"), ResetIdentifier("a@x.com"))
}

func TestUser_HasPassword(t *testing.T) {
	assert.False(t, (&User{}).HasPassword())
	assert.True(t, (&User{PasswordHash: "$2a$12$abc"}).HasPassword())
}
