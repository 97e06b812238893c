package jwt

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenMalformed is returned when a token is not a structurally valid
	// compact JWS or its registered claims have the wrong types.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenBadSignature is returned when the signature does not verify
	// against the loaded public key and bound algorithm.
	ErrTokenBadSignature = errors.New("token signature invalid")
	// ErrTokenExpired is returned when exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid is returned when nbf is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrReservedClaim is returned by Sign when a custom claim uses a
	// registered claim name under the RejectReserved policy.
	ErrReservedClaim = errors.New("custom claim collides with a registered claim")
	// ErrKeyLoad matches every [KeyLoadError] through errors.Is.
	ErrKeyLoad = errors.New("key load failed")
)

// KeyLoadError reports why key material could not be turned into a usable
// [KeyPair]. It is fatal at startup.
type KeyLoadError struct {
	Op  string
	Err error
}

func (e *KeyLoadError) Error() string {
	if e.Err == nil {
		return "jwt: " + e.Op
	}
	return fmt.Sprintf("jwt: %s: %v", e.Op, e.Err)
}

func (e *KeyLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrKeyLoad) hold for any KeyLoadError.
func (e *KeyLoadError) Is(target error) bool { return target == ErrKeyLoad }

func keyLoadError(op string, err error) error {
	return &KeyLoadError{Op: op, Err: err}
}

// Outcome is the terminal state of a verified token.
type Outcome uint8

const (
	OutcomeValid Outcome = iota
	OutcomeMalformed
	OutcomeBadSignature
	OutcomeExpired
	OutcomeNotYetValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeBadSignature:
		return "bad_signature"
	case OutcomeExpired:
		return "expired"
	case OutcomeNotYetValid:
		return "not_yet_valid"
	default:
		return "unknown"
	}
}

// OutcomeOf classifies an error returned by [Manager.Verify]. Unrecognised
// errors classify as malformed.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, ErrTokenBadSignature):
		return OutcomeBadSignature
	case errors.Is(err, ErrTokenExpired):
		return OutcomeExpired
	case errors.Is(err, ErrTokenNotYetValid):
		return OutcomeNotYetValid
	default:
		return OutcomeMalformed
	}
}
