package password

import (
	"crypto/subtle"
	"errors"
)

// Hasher produces and verifies stored hashes. It is immutable after
// construction and safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a Hasher bound to it.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{config: cfg}, nil
}

// Config returns the parameters the Hasher was built with.
func (h *Hasher) Config() Config {
	return h.config
}

// Hash derives a new stored hash for secret with a fresh random salt.
//
// Argon2id is used unless it is disabled or the primitive fails at runtime,
// in which case the PBKDF2 fallback is used transparently.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	if !h.config.DisableArgon2 {
		encoded, err := hashArgon2(secret, h.config.Argon2)
		if err == nil {
			return encoded, nil
		}
		if !errors.Is(err, errPrimaryUnavailable) {
			return "", err
		}
	}

	return hashPBKDF2(secret, h.config.PBKDF2)
}

// IsFallback reports whether stored was produced by the fallback algorithm.
func IsFallback(stored string) bool {
	info, err := Inspect(stored)
	return err == nil && info.Algorithm == AlgorithmPBKDF2SHA512
}

// Verify recomputes the digest of secret with the parameters embedded in
// stored and compares in constant time. A malformed stored hash returns a
// *HashFormatError, never (false, nil).
func (h *Hasher) Verify(secret, stored string) (bool, error) {
	d, err := decode(stored)
	if err != nil {
		return false, err
	}

	var computed []byte
	switch d.alg {
	case AlgorithmArgon2id:
		p := d.argon2
		computed, err = deriveArgon2(secret, d.salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
		if err != nil {
			return false, err
		}
	case AlgorithmPBKDF2SHA512:
		computed = derivePBKDF2(secret, d.salt, d.pbkdf2.Iterations, d.pbkdf2.KeyLength)
	default:
		return false, formatError("unsupported algorithm")
	}

	if len(computed) != len(d.digest) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(computed, d.digest) == 1, nil
}

// Compare is Verify folded into a single error: nil on match,
// ErrPasswordMismatch on a clean mismatch, or the format error.
func (h *Hasher) Compare(secret, stored string) error {
	ok, err := h.Verify(secret, stored)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether stored should be replaced with a fresh hash.
// Fallback hashes always need a rehash; Argon2id hashes need one when any
// cost parameter is below the configured baseline.
func (h *Hasher) NeedsRehash(stored string) (bool, error) {
	d, err := decode(stored)
	if err != nil {
		return false, err
	}

	switch d.alg {
	case AlgorithmPBKDF2SHA512:
		return true, nil
	case AlgorithmArgon2id:
		base := h.config.Baseline
		return d.argon2.Memory < base.Memory ||
			d.argon2.Time < base.Time ||
			d.argon2.Parallelism < base.Parallelism, nil
	default:
		return false, formatError("unsupported algorithm")
	}
}
