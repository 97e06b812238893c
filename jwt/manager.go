package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const maxLeeway = 2 * time.Minute

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Issuer is written to the iss claim of every token. Empty omits it.
	Issuer string
	// Leeway is the clock-skew allowance applied to exp and nbf. Zero means
	// strict comparison.
	Leeway time.Duration
	// ClaimCollision selects how Sign treats custom claims named like
	// registered claims.
	ClaimCollision ClaimCollisionPolicy
	// Now is the clock shared by Sign and Verify. Nil selects time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with issuer "authkit", zero leeway and the
// RejectReserved collision policy.
func DefaultConfig() Config {
	return Config{Issuer: "authkit"}
}

// Manager signs and verifies bearer tokens with a single key pair.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
	keys   *KeyPair
	parser *jwt.Parser
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config, keys *KeyPair) (*Manager, error) {
	if keys == nil || keys.private == nil || keys.method == nil {
		return nil, errors.New("key pair is required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.ClaimCollision {
	case RejectReserved, ReservedWins:
	default:
		return nil, errors.New("invalid claim collision policy")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	// Registered claims are checked by Verify against cfg.Now so that exp is
	// always evaluated before nbf.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{keys.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	return &Manager{config: cfg, keys: keys, parser: parser}, nil
}

// Algorithm returns the JWS algorithm of issued tokens.
func (j *Manager) Algorithm() string {
	return j.keys.Algorithm()
}

// Sign describes the sign operation and its observable behavior.
//
// iat and nbf are set to now, exp to now plus ttlMinutes (negative values
// produce already-expired tokens), jti to a fresh random UUID and iss to the
// configured issuer. An empty audience omits aud.
// Sign may return an error when input validation, dependency calls, or security checks fail.
func (j *Manager) Sign(subject, audience string, ttlMinutes int, custom map[string]any) (string, error) {
	if subject == "" {
		return "", errors.New("subject must not be empty")
	}

	claims := make(jwt.MapClaims, len(custom)+len(reservedClaims))
	for name, value := range custom {
		if IsReservedClaim(name) {
			if j.config.ClaimCollision == ReservedWins {
				continue
			}
			return "", fmt.Errorf("%w: %q", ErrReservedClaim, name)
		}
		claims[name] = value
	}

	now := j.config.Now()
	claims[claimSubject] = subject
	if j.config.Issuer != "" {
		claims[claimIssuer] = j.config.Issuer
	}
	if audience != "" {
		claims[claimAudience] = audience
	}
	claims[claimIssuedAt] = jwt.NewNumericDate(now)
	claims[claimNotBefore] = jwt.NewNumericDate(now)
	claims[claimExpiry] = jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute))
	claims[claimID] = uuid.NewString()

	token := jwt.NewWithClaims(j.keys.method, claims)
	return token.SignedString(j.keys.private)
}

// Verify describes the verify operation and its observable behavior.
//
// Checks run in a fixed order: structure (ErrTokenMalformed), signature
// against the bound algorithm (ErrTokenBadSignature), expiry
// (ErrTokenExpired), then not-before (ErrTokenNotYetValid).
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *Manager) Verify(tokenStr string) (*TokenClaims, error) {
	mc := jwt.MapClaims{}
	_, err := j.parser.ParseWithClaims(tokenStr, mc, func(*jwt.Token) (interface{}, error) {
		return j.keys.public, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, err := claimsFromMap(mc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenMalformed)
	}

	now := j.config.Now()
	if claims.ExpiresAt.Add(j.config.Leeway).Before(now) {
		return nil, ErrTokenExpired
	}
	if !claims.NotBefore.IsZero() && claims.NotBefore.After(now.Add(j.config.Leeway)) {
		return nil, ErrTokenNotYetValid
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
