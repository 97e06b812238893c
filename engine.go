package authkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/authkit/credstore"
	internalaudit "github.com/MrEthical07/authkit/internal/audit"
	"github.com/MrEthical07/authkit/jwt"
	"github.com/MrEthical07/authkit/password"
)

// Engine defines a public type used by authkit APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config    Config
	store     UserStore
	hasher    *password.Hasher
	tokens    *jwt.Manager
	decoyHash string
	logger    *slog.Logger
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
}

// Close flushes pending audit events. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenAlgorithm returns the JWS algorithm bound to the signing key.
func (e *Engine) TokenAlgorithm() string {
	if e == nil || e.tokens == nil {
		return ""
	}
	return e.tokens.Algorithm()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.tokens != nil
}

// Register describes the register operation and its observable behavior.
//
// The identifier is trimmed and lower-cased before the policy check and is
// stored in that form. Register returns ErrInvalidIdentifier,
// ErrPasswordPolicy, ErrAccountExists or ErrStoreUnavailable.
func (e *Engine) Register(ctx context.Context, identifier, secret string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	normalized, err := e.normalizeIdentifier(identifier)
	if err != nil {
		return "", err
	}
	if err := e.checkPasswordPolicy(secret); err != nil {
		return "", err
	}

	hash, err := e.hashSecret(ctx, secret)
	if err != nil {
		return "", err
	}

	record, err := e.store.Create(ctx, normalized, hash)
	if err != nil {
		if errors.Is(err, credstore.ErrDuplicate) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrAccountExists, func() map[string]string {
				return map[string]string{"identifier": normalized}
			})
			return "", ErrAccountExists
		}
		e.logger.WarnContext(ctx, "user store create failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, record.ID, nil, func() map[string]string {
		return map[string]string{"identifier": normalized}
	})
	e.logger.DebugContext(ctx, "user registered", "user_id", record.ID)

	return record.ID, nil
}

// UserExists reports whether identifier is registered and returns its id.
func (e *Engine) UserExists(ctx context.Context, identifier string) (string, bool, error) {
	if !e.ready() {
		return "", false, ErrEngineNotReady
	}

	normalized := normalize(identifier)
	if normalized == "" {
		return "", false, nil
	}

	record, err := e.store.GetByIdentifier(ctx, normalized)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return record.ID, true, nil
}

// Login describes the login operation and its observable behavior.
//
// Every credential failure returns ErrInvalidCredentials; the reason is
// recorded in metrics, audit and debug logs. On success a token with subject
// equal to the user id is signed, and a stored hash below the current
// baseline is replaced when UpgradeOnLogin is set.
func (e *Engine) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	normalized := normalize(identifier)
	if normalized == "" || secret == "" || len(secret) > e.config.Password.MaxLength {
		return nil, e.loginFailure(ctx, "", normalized, "invalid_input", ErrInvalidCredentials)
	}

	record, err := e.store.GetByIdentifier(ctx, normalized)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			e.logger.WarnContext(ctx, "user store lookup failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		_, _ = e.hasher.Verify(secret, e.decoyHash)
		return nil, e.loginFailure(ctx, "", normalized, "user_not_found", ErrUserNotFound)
	}

	ok, err := e.hasher.Verify(secret, record.PasswordHash)
	if err != nil {
		e.metricInc(MetricVerifyFormatError)
		e.logger.WarnContext(ctx, "stored password hash unreadable", "user_id", record.ID, "error", err)
		return nil, e.loginFailure(ctx, record.ID, normalized, "hash_format", err)
	}
	if !ok {
		e.metricInc(MetricVerifyMismatch)
		return nil, e.loginFailure(ctx, record.ID, normalized, "password_mismatch", ErrInvalidCredentials)
	}
	e.metricInc(MetricVerifyMatch)

	rehashed := e.upgradeHash(ctx, record, secret)

	token, err := e.tokens.Sign(record.ID, e.config.Token.Audience, e.config.Token.TTLMinutes, nil)
	if err != nil {
		return nil, err
	}
	e.metricInc(MetricTokenIssued)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, record.ID, nil, func() map[string]string {
		return map[string]string{"identifier": normalized}
	})
	e.logger.DebugContext(ctx, "login succeeded", "user_id", record.ID, "rehashed", rehashed)

	return &LoginResult{
		UserID:      record.ID,
		AccessToken: token,
		ExpiresIn:   e.config.Token.ttl(),
		Rehashed:    rehashed,
	}, nil
}

func (e *Engine) loginFailure(ctx context.Context, userID, identifier, reason string, cause error) error {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, cause, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
			"reason":     reason,
		}
	})
	e.logger.DebugContext(ctx, "login failed", "reason", reason)
	return ErrInvalidCredentials
}

// upgradeHash replaces a stored hash that needs a rehash. Failures are logged
// and never fail the login.
func (e *Engine) upgradeHash(ctx context.Context, record UserRecord, secret string) bool {
	needs, err := e.hasher.NeedsRehash(record.PasswordHash)
	if err != nil || !needs {
		return false
	}
	e.metricInc(MetricRehashNeeded)
	if !e.config.Password.UpgradeOnLogin || e.config.Password.DisableArgon2 {
		return false
	}

	upgraded, err := e.hashSecret(ctx, secret)
	if err != nil {
		e.logger.WarnContext(ctx, "password rehash failed", "user_id", record.ID, "error", err)
		return false
	}
	if password.IsFallback(upgraded) {
		// A fallback hash would need another rehash on the next login.
		return false
	}
	if err := e.store.UpdatePasswordHash(ctx, record.ID, upgraded); err != nil {
		e.logger.WarnContext(ctx, "password rehash store failed", "user_id", record.ID, "error", err)
		return false
	}

	e.metricInc(MetricRehashStored)
	e.emitAudit(ctx, auditEventPasswordRehashed, true, record.ID, nil, nil)
	return true
}

// IssueToken signs a token for subject with the configured audience and TTL.
// Custom claims follow the configured collision policy.
func (e *Engine) IssueToken(subject string, custom map[string]any) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	token, err := e.tokens.Sign(subject, e.config.Token.Audience, e.config.Token.TTLMinutes, custom)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricTokenIssued)
	return token, nil
}

// Validate describes the validate operation and its observable behavior.
//
// Every token failure returns ErrUnauthorized. The specific outcome
// (malformed, bad signature, expired, not yet valid) is counted and audited.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Validate(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricValidateLatency, time.Since(start))
		}()
	}

	claims, err := e.tokens.Verify(tokenStr)
	if err != nil {
		outcome := jwt.OutcomeOf(err)
		e.metricInc(tokenOutcomeMetric(outcome))
		e.emitAudit(ctx, auditEventTokenRejected, false, "", err, func() map[string]string {
			return map[string]string{"reason": outcome.String()}
		})
		e.logger.DebugContext(ctx, "token rejected", "reason", outcome.String())
		return nil, ErrUnauthorized
	}
	e.metricInc(MetricTokenValid)

	return &AuthResult{
		UserID:    claims.Subject,
		Audience:  claims.Audience,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
		TokenID:   claims.ID,
		Claims:    claims.Custom,
	}, nil
}

func tokenOutcomeMetric(o jwt.Outcome) MetricID {
	switch o {
	case jwt.OutcomeBadSignature:
		return MetricTokenBadSignature
	case jwt.OutcomeExpired:
		return MetricTokenExpired
	case jwt.OutcomeNotYetValid:
		return MetricTokenNotYetValid
	case jwt.OutcomeValid:
		return MetricTokenValid
	default:
		return MetricTokenMalformed
	}
}

func (e *Engine) hashSecret(ctx context.Context, secret string) (string, error) {
	hash, err := e.hasher.Hash(secret)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricHashCreated)
	if password.IsFallback(hash) {
		e.metricInc(MetricHashFallback)
		if !e.config.Password.DisableArgon2 {
			e.logger.WarnContext(ctx, "argon2id unavailable, stored pbkdf2 fallback hash")
		}
	}
	return hash, nil
}

func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (e *Engine) normalizeIdentifier(identifier string) (string, error) {
	normalized := normalize(identifier)
	if normalized == "" || len(normalized) > e.config.Account.MaxIdentifierLength {
		return "", ErrInvalidIdentifier
	}
	if e.config.Account.RequireEmailIdentifier {
		local, domain, ok := strings.Cut(normalized, "@")
		if !ok || local == "" || domain == "" || strings.ContainsAny(normalized, " \t\r\n") {
			return "", ErrInvalidIdentifier
		}
	}
	return normalized, nil
}

func (e *Engine) checkPasswordPolicy(secret string) error {
	if len(secret) < e.config.Password.MinLength || len(secret) > e.config.Password.MaxLength {
		return ErrPasswordPolicy
	}
	return nil
}
