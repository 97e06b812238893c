package password

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
)

// Algorithm identifies the hashing scheme recorded in a stored hash tag.
type Algorithm uint8

const (
	// AlgorithmUnknown is the zero value; no stored hash decodes to it.
	AlgorithmUnknown Algorithm = iota
	// AlgorithmArgon2id is the memory-hard primary algorithm.
	AlgorithmArgon2id
	// AlgorithmPBKDF2SHA512 is the CPU-hard fallback algorithm.
	AlgorithmPBKDF2SHA512
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmArgon2id:
		return argon2Tag
	case AlgorithmPBKDF2SHA512:
		return pbkdf2Tag
	default:
		return "unknown"
	}
}

// Info describes a stored hash without verifying it. Only the parameter block
// selected by Algorithm is populated.
type Info struct {
	Algorithm Algorithm
	Argon2    Argon2Params
	PBKDF2    PBKDF2Params
}

// decoded is a stored hash parsed once into its closed variant.
type decoded struct {
	alg    Algorithm
	argon2 Argon2Params
	pbkdf2 PBKDF2Params
	salt   []byte
	digest []byte
}

// Inspect decodes the algorithm and parameters of a stored hash.
func Inspect(stored string) (Info, error) {
	d, err := decode(stored)
	if err != nil {
		return Info{}, err
	}
	return Info{Algorithm: d.alg, Argon2: d.argon2, PBKDF2: d.pbkdf2}, nil
}

func decode(stored string) (*decoded, error) {
	if !strings.HasPrefix(stored, "$") {
		return nil, formatError("missing algorithm tag")
	}
	tag, _, ok := strings.Cut(stored[1:], "$")
	if !ok {
		return nil, formatError("truncated hash")
	}

	switch tag {
	case argon2Tag:
		return decodeArgon2(stored)
	case pbkdf2Tag:
		return decodePBKDF2(stored)
	default:
		return nil, formatError("unsupported algorithm")
	}
}

// decodeSegment accepts padded and unpadded standard base64 and rejects
// non-canonical trailing bits, so every character of the segment matters.
func decodeSegment(segment string) ([]byte, bool) {
	if segment == "" || strings.ContainsAny(segment, "\r\n") {
		return nil, false
	}
	raw, err := base64.RawStdEncoding.Strict().DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
