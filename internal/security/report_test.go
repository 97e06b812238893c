package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func productionInput() ReportInput {
	return ReportInput{
		SigningAlgorithm:  "RS512",
		TokenTTL:          time.Hour,
		ClaimCollision:    "reject",
		Password:          PasswordReport{Memory: 64 * 1024, Time: 3, Parallelism: 4, SaltLength: 16, KeyLength: 32},
		PBKDF2Iterations:  600000,
		UpgradeOnLogin:    true,
		MinPasswordLength: 6,
		MaxPasswordLength: 1024,
		AuditEnabled:      true,
		MetricsEnabled:    true,
	}
}

func TestBuildReportProductionDefaultsAreClean(t *testing.T) {
	r := BuildReport(productionInput())
	assert.True(t, r.Clean(), "%+v", r.Findings)
	assert.Equal(t, "RS512", r.SigningAlgorithm)
	assert.Equal(t, uint32(64*1024), r.Argon2.Memory)
}

func TestBuildReportFindings(t *testing.T) {
	in := productionInput()
	in.DisableArgon2 = true
	in.Password.Memory = 8192
	in.Password.Time = 1
	in.PBKDF2Iterations = 1000
	in.UpgradeOnLogin = false
	in.MaxPasswordLength = 1 << 20
	in.TokenTTL = 48 * time.Hour
	in.Leeway = time.Minute
	in.AuditEnabled = false

	r := BuildReport(in)

	codes := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		codes = append(codes, f.Code)
		assert.NotEmpty(t, f.Message)
	}
	assert.Equal(t, []string{
		"argon2_disabled",
		"argon2_memory_low",
		"argon2_time_low",
		"pbkdf2_iterations_low",
		"rehash_disabled",
		"password_max_length_high",
		"token_ttl_long",
		"token_leeway",
		"audit_disabled",
	}, codes)
	assert.True(t, r.FallbackForced)
	assert.False(t, r.Clean())
}
