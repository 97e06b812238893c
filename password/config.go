package password

import "errors"

const (
	minMemoryKB         uint32 = 8 * 1024
	minTimeCost         uint32 = 1
	minParallelism      uint8  = 1
	minSaltLength       uint32 = 16
	minKeyLength        uint32 = 16
	minPBKDF2Iterations        = 1000
	minPBKDF2SaltLength        = 16
	minPBKDF2KeyLength         = 32
	maxPBKDF2KeyLength         = 128
)

// Argon2Params are the Argon2id tunables. Memory is expressed in KiB.
type Argon2Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PBKDF2Params are the PBKDF2-HMAC-SHA512 tunables.
type PBKDF2Params struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Argon2 parameters used for every new primary hash.
	Argon2 Argon2Params
	// PBKDF2 parameters used when the primary algorithm is unavailable.
	PBKDF2 PBKDF2Params
	// Baseline is the minimum Argon2id strength accepted without a rehash
	// signal. Only Memory, Time and Parallelism are compared.
	Baseline Argon2Params
	// DisableArgon2 marks the primary algorithm unavailable, for runtimes that
	// cannot afford its memory cost. New hashes then use PBKDF2.
	DisableArgon2 bool
}

// DefaultConfig returns the production parameters: Argon2id with 64 MiB,
// three passes, four lanes, 16-byte salt and 32-byte digest; PBKDF2 with
// 600000 iterations, 32-byte salt and 64-byte digest. The rehash baseline
// equals the Argon2id parameters.
func DefaultConfig() Config {
	argon := Argon2Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
	return Config{
		Argon2: argon,
		PBKDF2: PBKDF2Params{
			Iterations: 600000,
			SaltLength: 32,
			KeyLength:  64,
		},
		Baseline: argon,
	}
}

// Validate rejects parameter sets outside the package bounds. The upper
// bounds match what Verify accepts from a stored hash.
func (c Config) Validate() error {
	if c.Argon2.Memory < minMemoryKB || c.Argon2.Memory > maxMemoryKB {
		return errors.New("password memory must be within [8192, 1048576] KB")
	}
	if c.Argon2.Time < minTimeCost || c.Argon2.Time > maxTimeCost {
		return errors.New("password time must be within [1, 64]")
	}
	if c.Argon2.Parallelism < minParallelism || c.Argon2.Parallelism > maxParallelism {
		return errors.New("password parallelism must be within [1, 16]")
	}
	if c.Argon2.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if c.Argon2.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	if c.PBKDF2.Iterations < minPBKDF2Iterations || c.PBKDF2.Iterations > maxPBKDF2Iterations {
		return errors.New("password pbkdf2 iterations must be within [1000, 10000000]")
	}
	if c.PBKDF2.SaltLength < minPBKDF2SaltLength {
		return errors.New("password pbkdf2 salt length must be >= 16")
	}
	if c.PBKDF2.KeyLength < minPBKDF2KeyLength || c.PBKDF2.KeyLength > maxPBKDF2KeyLength {
		return errors.New("password pbkdf2 key length must be within [32, 128]")
	}
	if c.Baseline.Memory > c.Argon2.Memory ||
		c.Baseline.Time > c.Argon2.Time ||
		c.Baseline.Parallelism > c.Argon2.Parallelism {
		return errors.New("password baseline must not exceed argon2 parameters")
	}

	return nil
}
