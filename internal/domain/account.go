package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound is surfaced to the requester — this flow
	// deliberately confirms whether an email is registered.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTokenInvalid covers malformed, tampered, expired and already
	// consumed tokens. One error for all of them; the distinction must
	// never reach the client.
	ErrTokenInvalid = errors.New("token is invalid or expired")

	ErrThrottled      = errors.New("too many reset requests")
	ErrDeliveryFailed = errors.New("reset email delivery failed")

	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Account is the user record this flow reads and, on a successful reset,
// mutates. Email is unique and stored lowercase.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reset audit events, recorded best-effort per attempt.
const (
	ResetEventRequested = "requested"
	ResetEventCompleted = "completed"
)

// ResetEvent is one append-only audit row for a reset attempt.
type ResetEvent struct {
	ID        string
	Email     string
	Event     string
	ClientIP  string
	RequestID string
	CreatedAt time.Time
}
