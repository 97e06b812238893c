package security

import (
	"fmt"
	"time"
)

// Recommended floors. They match the production defaults of the engine.
const (
	recommendedArgon2Memory      = 64 * 1024
	recommendedArgon2Time        = 3
	recommendedPBKDF2Iterations  = 600000
	recommendedMaxTokenTTL       = 24 * time.Hour
	recommendedMaxPasswordLength = 4096
)

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Finding is a single posture observation. Code is stable for alerting.
type Finding struct {
	Code    string
	Message string
}

type Report struct {
	SigningAlgorithm       string
	TokenTTL               time.Duration
	Leeway                 time.Duration
	ClaimCollision         string
	Argon2                 PasswordReport
	PBKDF2Iterations       int
	FallbackForced         bool
	UpgradeOnLogin         bool
	RequireEmailIdentifier bool
	AuditEnabled           bool
	MetricsEnabled         bool
	Findings               []Finding
}

type ReportInput struct {
	SigningAlgorithm       string
	TokenTTL               time.Duration
	Leeway                 time.Duration
	ClaimCollision         string
	Password               PasswordReport
	PBKDF2Iterations       int
	DisableArgon2          bool
	UpgradeOnLogin         bool
	MinPasswordLength      int
	MaxPasswordLength      int
	RequireEmailIdentifier bool
	AuditEnabled           bool
	MetricsEnabled         bool
}

// BuildReport copies the effective settings and lists findings in a fixed
// order.
func BuildReport(input ReportInput) Report {
	r := Report{
		SigningAlgorithm:       input.SigningAlgorithm,
		TokenTTL:               input.TokenTTL,
		Leeway:                 input.Leeway,
		ClaimCollision:         input.ClaimCollision,
		Argon2:                 input.Password,
		PBKDF2Iterations:       input.PBKDF2Iterations,
		FallbackForced:         input.DisableArgon2,
		UpgradeOnLogin:         input.UpgradeOnLogin,
		RequireEmailIdentifier: input.RequireEmailIdentifier,
		AuditEnabled:           input.AuditEnabled,
		MetricsEnabled:         input.MetricsEnabled,
	}

	add := func(code, format string, args ...any) {
		r.Findings = append(r.Findings, Finding{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if input.DisableArgon2 {
		add("argon2_disabled", "new hashes use the PBKDF2 fallback")
	}
	if input.Password.Memory < recommendedArgon2Memory {
		add("argon2_memory_low", "argon2id memory %d KiB is below %d KiB", input.Password.Memory, recommendedArgon2Memory)
	}
	if input.Password.Time < recommendedArgon2Time {
		add("argon2_time_low", "argon2id iterations %d is below %d", input.Password.Time, recommendedArgon2Time)
	}
	if input.PBKDF2Iterations < recommendedPBKDF2Iterations {
		add("pbkdf2_iterations_low", "pbkdf2 iterations %d is below %d", input.PBKDF2Iterations, recommendedPBKDF2Iterations)
	}
	if !input.UpgradeOnLogin {
		add("rehash_disabled", "weak stored hashes are not upgraded on login")
	}
	if input.MaxPasswordLength > recommendedMaxPasswordLength {
		add("password_max_length_high", "max password length %d lets callers force long key derivations", input.MaxPasswordLength)
	}
	if input.TokenTTL > recommendedMaxTokenTTL {
		add("token_ttl_long", "token ttl %s exceeds %s and tokens cannot be revoked", input.TokenTTL, recommendedMaxTokenTTL)
	}
	if input.Leeway > 0 {
		add("token_leeway", "tokens are accepted up to %s past expiry", input.Leeway)
	}
	if !input.AuditEnabled {
		add("audit_disabled", "authentication events are not audited")
	}

	return r
}

// Clean reports whether the configuration produced no findings.
func (r Report) Clean() bool {
	return len(r.Findings) == 0
}
