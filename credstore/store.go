package credstore

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by lookups of unknown identifiers or user ids.
	ErrNotFound = errors.New("credential record not found")
	// ErrDuplicate is returned by Create when the identifier is already taken.
	ErrDuplicate = errors.New("identifier already registered")
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("credential store unavailable")
)

// UserRecord is one persisted credential.
type UserRecord struct {
	ID           string
	Identifier   string
	PasswordHash string
	CreatedAt    time.Time
}
