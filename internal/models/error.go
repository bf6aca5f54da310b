package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

// OTP workflow errors
var (
	ErrOTPNotFound     = errors.New("no one-time code found")
	ErrOTPExpired      = errors.New("one-time code has expired")
	ErrOTPMismatch     = errors.New("one-time code does not match")
	ErrDeliveryFailure = errors.New("failed to deliver one-time code")
)

// Credential errors
var (
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrNoSuchAccount     = errors.New("no account found for email")
	ErrNoPasswordSet     = errors.New("account has no password set")
	ErrInvalidPassword   = errors.New("invalid password")
)
