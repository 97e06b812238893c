package password

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Tag           = "pbkdf2-sha512"
	maxPBKDF2Iterations = 10_000_000
)

func hashPBKDF2(secret string, p PBKDF2Params) (string, error) {
	salt, err := randomBytes(p.SaltLength)
	if err != nil {
		return "", err
	}

	key := derivePBKDF2(secret, salt, p.Iterations, p.KeyLength)

	return fmt.Sprintf(
		"$%s$%d$%s$%s",
		pbkdf2Tag,
		p.Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

func derivePBKDF2(secret string, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key([]byte(secret), salt, iterations, keyLen, sha512.New)
}

func decodePBKDF2(stored string) (*decoded, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2Tag {
		return nil, formatError("invalid pbkdf2 layout")
	}

	// Both "600000" and the PHC-style "i=600000" are accepted.
	iterations, err := strconv.Atoi(strings.TrimPrefix(parts[2], "i="))
	if err != nil || iterations < 1 || iterations > maxPBKDF2Iterations {
		return nil, formatError("invalid iteration count")
	}

	salt, ok := decodeSegment(parts[3])
	if !ok {
		return nil, formatError("invalid salt encoding")
	}
	if len(salt) < minStoredSalt {
		return nil, formatError("invalid salt length")
	}

	digest, ok := decodeSegment(parts[4])
	if !ok {
		return nil, formatError("invalid hash encoding")
	}
	if len(digest) < minStoredDigest || len(digest) > maxPBKDF2KeyLength {
		return nil, formatError("invalid hash length")
	}

	return &decoded{
		alg: AlgorithmPBKDF2SHA512,
		pbkdf2: PBKDF2Params{
			Iterations: iterations,
			SaltLength: len(salt),
			KeyLength:  len(digest),
		},
		salt:   salt,
		digest: digest,
	}, nil
}
