package authkit

import (
	"errors"
	"time"

	"github.com/MrEthical07/authkit/jwt"
	"github.com/MrEthical07/authkit/password"
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Password PasswordConfig
	Token    TokenConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authkit APIs.
//
// Argon2 fields apply to new hashes and double as the rehash baseline.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	PBKDF2Iterations int
	PBKDF2SaltLength int
	PBKDF2KeyLength  int
	// DisableArgon2 forces the PBKDF2 fallback for new hashes.
	DisableArgon2 bool

	// MinLength and MaxLength bound the password in bytes. MaxLength caps the
	// work an attacker can force through the key derivation.
	MinLength      int
	MaxLength      int
	UpgradeOnLogin bool
}

func (c PasswordConfig) hasherConfig() password.Config {
	argon := password.Argon2Params{
		Memory:      c.Memory,
		Time:        c.Time,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
	return password.Config{
		Argon2: argon,
		PBKDF2: password.PBKDF2Params{
			Iterations: c.PBKDF2Iterations,
			SaltLength: c.PBKDF2SaltLength,
			KeyLength:  c.PBKDF2KeyLength,
		},
		Baseline:      argon,
		DisableArgon2: c.DisableArgon2,
	}
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authkit APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Issuer         string
	Audience       string
	TTLMinutes     int
	Leeway         time.Duration
	ClaimCollision jwt.ClaimCollisionPolicy
}

func (c TokenConfig) managerConfig() jwt.Config {
	return jwt.Config{
		Issuer:         c.Issuer,
		Leeway:         c.Leeway,
		ClaimCollision: c.ClaimCollision,
	}
}

func (c TokenConfig) ttl() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// AccountConfig defines a public type used by authkit APIs.
//
// Identifiers are trimmed and lower-cased before any policy check.
type AccountConfig struct {
	MaxIdentifierLength int
	// RequireEmailIdentifier rejects identifiers without a local part and a
	// domain separated by '@'.
	RequireEmailIdentifier bool
}

// AuditConfig defines a public type used by authkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: Argon2id at 64 MiB, three
// passes and four lanes, PBKDF2-SHA512 at 600000 iterations as fallback,
// one-hour tokens for audience "app", and email identifiers.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Memory:           64 * 1024,
			Time:             3,
			Parallelism:      4,
			SaltLength:       16,
			KeyLength:        32,
			PBKDF2Iterations: 600000,
			PBKDF2SaltLength: 32,
			PBKDF2KeyLength:  64,
			MinLength:        6,
			MaxLength:        1024,
			UpgradeOnLogin:   true,
		},
		Token: TokenConfig{
			Issuer:         "authkit",
			Audience:       "app",
			TTLMinutes:     60,
			ClaimCollision: jwt.RejectReserved,
		},
		Account: AccountConfig{
			MaxIdentifierLength:    254,
			RequireEmailIdentifier: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks cross-field constraints that the component constructors do
// not see on their own.
func (c *Config) Validate() error {
	if err := c.Password.hasherConfig().Validate(); err != nil {
		return err
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}
	if c.Password.MaxLength < c.Password.MinLength {
		return errors.New("Password MaxLength must be >= MinLength")
	}

	if c.Token.TTLMinutes <= 0 {
		return errors.New("Token TTLMinutes must be > 0")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be within [0, 2m]")
	}
	switch c.Token.ClaimCollision {
	case jwt.RejectReserved, jwt.ReservedWins:
	default:
		return errors.New("Token ClaimCollision is invalid")
	}

	if c.Account.MaxIdentifierLength <= 0 {
		return errors.New("Account MaxIdentifierLength must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
