package password

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2IDKey is the Argon2id primitive. Tests replace it to simulate a
// runtime that cannot run it.
var argon2IDKey = argon2.IDKey

const (
	argon2Tag = "argon2id"

	// Decode bounds. They are wider than the Config floors so that old, weaker
	// hashes still verify and are reported by NeedsRehash instead of rejected,
	// while a forged record cannot demand unbounded memory or time.
	maxMemoryKB        uint32 = 1024 * 1024
	maxTimeCost        uint32 = 64
	maxParallelism     uint8  = 16
	minStoredSalt             = 8
	minStoredDigest           = 16
	maxStoredDigest           = 1024
	argon2ParamEntries        = 3
)

func hashArgon2(secret string, p Argon2Params) (string, error) {
	salt, err := randomBytes(int(p.SaltLength))
	if err != nil {
		return "", err
	}

	key, err := deriveArgon2(secret, salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Tag,
		argon2.Version,
		p.Memory,
		p.Time,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// deriveArgon2 converts a panic inside the primitive (for example an
// allocation the runtime refuses) into errPrimaryUnavailable.
func deriveArgon2(secret string, salt []byte, time, memory uint32, threads uint8, keyLen uint32) (key []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("%w: %v", errPrimaryUnavailable, r)
		}
	}()

	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	return argon2IDKey([]byte(secret), salt, time, memory, threads, keyLen), nil
}

func decodeArgon2(stored string) (*decoded, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Tag {
		return nil, formatError("invalid argon2id layout")
	}

	versionPart := parts[2]
	if !strings.HasPrefix(versionPart, "v=") {
		return nil, formatError("missing argon2 version")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(versionPart, "v="))
	if err != nil {
		return nil, formatError("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, formatError("unsupported argon2 version")
	}

	params, err := parseArgon2Params(parts[3])
	if err != nil {
		return nil, err
	}

	salt, ok := decodeSegment(parts[4])
	if !ok {
		return nil, formatError("invalid salt encoding")
	}
	if len(salt) < minStoredSalt {
		return nil, formatError("invalid salt length")
	}

	digest, ok := decodeSegment(parts[5])
	if !ok {
		return nil, formatError("invalid hash encoding")
	}
	if len(digest) < minStoredDigest || len(digest) > maxStoredDigest {
		return nil, formatError("invalid hash length")
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(digest))

	return &decoded{
		alg:    AlgorithmArgon2id,
		argon2: params,
		salt:   salt,
		digest: digest,
	}, nil
}

func parseArgon2Params(part string) (Argon2Params, error) {
	var params Argon2Params

	pairs := strings.Split(part, ",")
	if len(pairs) != argon2ParamEntries {
		return params, formatError("invalid parameter format")
	}

	var memorySet, timeSet, parallelismSet bool
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return params, formatError("invalid parameter entry")
		}

		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 || v > uint64(maxMemoryKB) || memorySet {
				return params, formatError("invalid memory parameter")
			}
			params.Memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) || v > uint64(maxTimeCost) || timeSet {
				return params, formatError("invalid time parameter")
			}
			params.Time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) || v > uint64(maxParallelism) || parallelismSet {
				return params, formatError("invalid parallelism parameter")
			}
			params.Parallelism = uint8(v)
			parallelismSet = true
		default:
			return params, formatError("unsupported parameter")
		}
	}

	if !memorySet || !timeSet || !parallelismSet {
		return params, formatError("missing parameters")
	}
	// RFC 9106: memory must be at least 8 KiB per lane.
	if params.Memory < 8*uint32(params.Parallelism) {
		return params, formatError("memory below lane minimum")
	}

	return params, nil
}
