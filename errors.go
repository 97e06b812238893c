package authkit

import "errors"

var (
	// ErrUnauthorized is the single outcome callers see for any rejected token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is the single outcome callers see for any failed
	// login: unknown identifier, wrong password or unreadable stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is an exported constant or variable used by the authentication engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidIdentifier is returned by Register for an identifier outside policy.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrStoreUnavailable wraps user store failures that are not lookups of
	// missing users or duplicates.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
