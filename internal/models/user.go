package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string // empty for accounts created without a password
	Name         string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a password hash is on file.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
