package authkit

import "github.com/MrEthical07/authkit/internal/security"

// SecurityReport is the effective security posture of an Engine.
type SecurityReport = security.Report

// SecurityFinding is one entry of [SecurityReport.Findings].
type SecurityFinding = security.Finding

// SecurityReport summarises the hashing and token parameters in force and
// flags settings weaker than the production defaults. It never includes key
// material.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	pw := e.config.Password
	return security.BuildReport(security.ReportInput{
		SigningAlgorithm: e.TokenAlgorithm(),
		TokenTTL:         e.config.Token.ttl(),
		Leeway:           e.config.Token.Leeway,
		ClaimCollision:   e.config.Token.ClaimCollision.String(),
		Password: security.PasswordReport{
			Memory:      pw.Memory,
			Time:        pw.Time,
			Parallelism: pw.Parallelism,
			SaltLength:  pw.SaltLength,
			KeyLength:   pw.KeyLength,
		},
		PBKDF2Iterations:       pw.PBKDF2Iterations,
		DisableArgon2:          pw.DisableArgon2,
		UpgradeOnLogin:         pw.UpgradeOnLogin,
		MinPasswordLength:      pw.MinLength,
		MaxPasswordLength:      pw.MaxLength,
		RequireEmailIdentifier: e.config.Account.RequireEmailIdentifier,
		AuditEnabled:           e.config.Audit.Enabled,
		MetricsEnabled:         e.config.Metrics.Enabled,
	})
}
