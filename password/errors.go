package password

import "errors"

var (
	// ErrHashFormat matches every [HashFormatError] through errors.Is.
	ErrHashFormat = errors.New("invalid stored hash format")
	// ErrEmptySecret is returned by Hash for an empty secret.
	ErrEmptySecret = errors.New("secret must not be empty")
	// ErrPasswordMismatch is returned by Compare when the secret does not match.
	ErrPasswordMismatch = errors.New("password mismatch")

	errPrimaryUnavailable = errors.New("argon2id unavailable")
)

// HashFormatError reports a stored hash that is corrupt, truncated or tagged
// with an algorithm this package does not know. It is never returned for a
// well-formed hash that simply does not match the secret.
type HashFormatError struct {
	Reason string
}

func (e *HashFormatError) Error() string {
	return "password: invalid stored hash: " + e.Reason
}

// Is makes errors.Is(err, ErrHashFormat) hold for any HashFormatError.
func (e *HashFormatError) Is(target error) bool {
	return target == ErrHashFormat
}

func formatError(reason string) error {
	return &HashFormatError{Reason: reason}
}
