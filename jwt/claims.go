package jwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names. Custom claims may not reuse them.
const (
	claimSubject   = "sub"
	claimIssuer    = "iss"
	claimAudience  = "aud"
	claimIssuedAt  = "iat"
	claimNotBefore = "nbf"
	claimExpiry    = "exp"
	claimID        = "jti"
)

var reservedClaims = map[string]struct{}{
	claimSubject:   {},
	claimIssuer:    {},
	claimAudience:  {},
	claimIssuedAt:  {},
	claimNotBefore: {},
	claimExpiry:    {},
	claimID:        {},
}

// IsReservedClaim reports whether name is a registered claim set by Sign.
func IsReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}

// TokenClaims is the authenticated content of a verified token. Times have
// second precision. Custom is nil when the token carries no custom claims.
type TokenClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	ID        string
	Custom    map[string]any
}

// ClaimCollisionPolicy decides what Sign does with a custom claim whose name
// is a registered claim.
type ClaimCollisionPolicy uint8

const (
	// RejectReserved fails Sign with ErrReservedClaim.
	RejectReserved ClaimCollisionPolicy = iota
	// ReservedWins silently drops the custom value.
	ReservedWins
)

func (p ClaimCollisionPolicy) String() string {
	switch p {
	case RejectReserved:
		return "reject"
	case ReservedWins:
		return "reserved-wins"
	default:
		return "unknown"
	}
}

// ParseClaimCollisionPolicy maps a configuration string to a policy. The
// empty string selects RejectReserved.
func ParseClaimCollisionPolicy(s string) (ClaimCollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "reject-reserved":
		return RejectReserved, nil
	case "reserved-wins", "reservedwins":
		return ReservedWins, nil
	default:
		return RejectReserved, fmt.Errorf("unknown claim collision policy %q", s)
	}
}

// claimsFromMap converts verified map claims. Wrong types on registered
// claims are reported as malformed.
func claimsFromMap(mc jwt.MapClaims) (*TokenClaims, error) {
	out := &TokenClaims{}

	var err error
	if out.Subject, err = mc.GetSubject(); err != nil {
		return nil, err
	}
	if out.Issuer, err = mc.GetIssuer(); err != nil {
		return nil, err
	}
	aud, err := mc.GetAudience()
	if err != nil {
		return nil, err
	}
	if len(aud) > 0 {
		out.Audience = []string(aud)
	}

	if out.IssuedAt, err = numericTime(mc.GetIssuedAt()); err != nil {
		return nil, err
	}
	if out.NotBefore, err = numericTime(mc.GetNotBefore()); err != nil {
		return nil, err
	}
	if out.ExpiresAt, err = numericTime(mc.GetExpirationTime()); err != nil {
		return nil, err
	}

	if raw, ok := mc[claimID]; ok {
		id, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s has invalid type", claimID)
		}
		out.ID = id
	}

	for name, value := range mc {
		if IsReservedClaim(name) {
			continue
		}
		if out.Custom == nil {
			out.Custom = make(map[string]any)
		}
		out.Custom[name] = value
	}

	return out, nil
}

func numericTime(d *jwt.NumericDate, err error) (time.Time, error) {
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, nil
	}
	return d.Time, nil
}
