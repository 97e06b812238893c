package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newEdPair(t testing.TB) (*KeyPair, ed25519.PrivateKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	pair, err := NewKeyPair(priv)
	if err != nil {
		t.Fatalf("new key pair: %v", err)
	}
	return pair, priv
}

func newTestManager(t testing.TB, pair *KeyPair, mutate func(*Config)) *Manager {
	t.Helper()
	cfg := Config{
		Issuer: "authkit-test",
		Now:    func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewManager(cfg, pair)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func signRaw(t testing.TB, priv ed25519.PrivateKey, claims gjwt.MapClaims) string {
	t.Helper()
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign raw token: %v", err)
	}
	return token
}

func TestSignVerifyRoundTrip(t *testing.T) {
	pair, _ := newEdPair(t)
	m := newTestManager(t, pair, nil)

	custom := map[string]any{"role": "admin", "tenant": "t1"}
	token, err := m.Sign("user-1", "app", 15, custom)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Issuer != "authkit-test" {
		t.Fatalf("unexpected subject/issuer: %+v", claims)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "app" {
		t.Fatalf("unexpected audience: %v", claims.Audience)
	}
	if !claims.IssuedAt.Equal(fixedNow) || !claims.NotBefore.Equal(fixedNow) {
		t.Fatalf("unexpected iat/nbf: %v %v", claims.IssuedAt, claims.NotBefore)
	}
	if !claims.ExpiresAt.Equal(fixedNow.Add(15 * time.Minute)) {
		t.Fatalf("unexpected exp: %v", claims.ExpiresAt)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
	if len(claims.Custom) != 2 || claims.Custom["role"] != "admin" || claims.Custom["tenant"] != "t1" {
		t.Fatalf("unexpected custom claims: %v", claims.Custom)
	}
}

func TestSignScenarioSubject42(t *testing.T) {
	pair, _ := newEdPair(t)
	m, err := NewManager(DefaultConfig(), pair)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.Sign("42", "app", 60, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected three token parts, got %d", len(parts))
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if claims.Custom != nil {
		t.Fatalf("expected no custom claims, got %v", claims.Custom)
	}
}

func TestUniqueTokenIDs(t *testing.T) {
	pair, _ := newEdPair(t)
	m := newTestManager(t, pair, nil)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, err := m.Sign("u", "", 1, nil)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		claims, err := m.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if _, dup := seen[claims.ID]; dup {
			t.Fatalf("duplicate jti %s", claims.ID)
		}
		seen[claims.ID] = struct{}{}
	}
}

func TestVerifyExpiredTTL(t *testing.T) {
	pair, _ := newEdPair(t)
	m, err := NewManager(DefaultConfig(), pair)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.Sign("42", "app", -1, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyNotYetValid(t *testing.T) {
	pair, _ := newEdPair(t)
	future := newTestManager(t, pair, func(c *Config) {
		c.Now = func() time.Time { return fixedNow.Add(10 * time.Minute) }
	})
	present := newTestManager(t, pair, nil)

	token, err := future.Sign("u", "app", 60, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := present.Verify(token); !errors.Is(err, ErrTokenNotYetValid) {
		t.Fatalf("expected ErrTokenNotYetValid, got %v", err)
	}
}

func TestVerifyChecksExpiryBeforeNotBefore(t *testing.T) {
	pair, priv := newEdPair(t)
	m := newTestManager(t, pair, nil)

	token := signRaw(t, priv, gjwt.MapClaims{
		"sub": "u",
		"nbf": fixedNow.Add(time.Hour).Unix(),
		"exp": fixedNow.Add(-time.Hour).Unix(),
	})
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyLeeway(t *testing.T) {
	pair, priv := newEdPair(t)
	m := newTestManager(t, pair, func(c *Config) { c.Leeway = 30 * time.Second })

	within := signRaw(t, priv, gjwt.MapClaims{
		"sub": "u",
		"exp": fixedNow.Add(-15 * time.Second).Unix(),
		"nbf": fixedNow.Add(15 * time.Second).Unix(),
	})
	if _, err := m.Verify(within); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}

	expired := signRaw(t, priv, gjwt.MapClaims{
		"sub": "u",
		"exp": fixedNow.Add(-2 * time.Minute).Unix(),
	})
	if _, err := m.Verify(expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	strict := newTestManager(t, pair, nil)
	if _, err := strict.Verify(within); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected zero leeway to reject, got %v", err)
	}
}

func TestVerifyForeignKeyPair(t *testing.T) {
	pairA, _ := newEdPair(t)
	pairB, _ := newEdPair(t)
	signer := newTestManager(t, pairA, nil)
	verifier := newTestManager(t, pairB, nil)

	token, err := signer.Sign("42", "app", 60, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("expected ErrTokenBadSignature, got %v", err)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	pair, _ := newEdPair(t)
	m := newTestManager(t, pair, nil)

	claims := gjwt.MapClaims{"sub": "u", "exp": fixedNow.Add(time.Minute).Unix()}
	hs, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := m.Verify(hs); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("expected HS256 token to be rejected as bad signature, got %v", err)
	}

	none, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := m.Verify(none); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("expected alg=none token to be rejected as bad signature, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	pair, _ := newEdPair(t)
	m := newTestManager(t, pair, nil)

	token, err := m.Sign("user-1", "app", 60, nil)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","exp":9999999999}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	if _, err := m.Verify(tampered); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("expected ErrTokenBadSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	pair, priv := newEdPair(t)
	m := newTestManager(t, pair, nil)

	missingExp := signRaw(t, priv, gjwt.MapClaims{"sub": "u"})
	badSubject := signRaw(t, priv, gjwt.MapClaims{"sub": 42, "exp": fixedNow.Add(time.Minute).Unix()})

	for _, token := range []string{"", "abc", "not.a.jwt", "a.b.c.d", missingExp, badSubject} {
		if _, err := m.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("expected ErrTokenMalformed for %q, got %v", token, err)
		}
	}
}

func TestSignClaimCollision(t *testing.T) {
	pair, _ := newEdPair(t)

	reject := newTestManager(t, pair, nil)
	if _, err := reject.Sign("u", "app", 5, map[string]any{"sub": "admin"}); !errors.Is(err, ErrReservedClaim) {
		t.Fatalf("expected ErrReservedClaim, got %v", err)
	}

	wins := newTestManager(t, pair, func(c *Config) { c.ClaimCollision = ReservedWins })
	token, err := wins.Sign("u", "app", 5, map[string]any{"sub": "admin", "exp": 1, "scope": "read"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := wins.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u" || claims.Custom["scope"] != "read" {
		t.Fatalf("reserved claims must win: %+v", claims)
	}
	if _, ok := claims.Custom["sub"]; ok {
		t.Fatal("reserved name leaked into custom claims")
	}
}

func TestNewManagerValidation(t *testing.T) {
	pair, _ := newEdPair(t)

	if _, err := NewManager(DefaultConfig(), nil); err == nil {
		t.Fatal("expected missing key pair to fail")
	}
	if _, err := NewManager(Config{Leeway: 3 * time.Minute}, pair); err == nil {
		t.Fatal("expected leeway above two minutes to fail")
	}
	if _, err := NewManager(Config{Leeway: -time.Second}, pair); err == nil {
		t.Fatal("expected negative leeway to fail")
	}
	if _, err := NewManager(Config{ClaimCollision: ClaimCollisionPolicy(9)}, pair); err == nil {
		t.Fatal("expected unknown collision policy to fail")
	}
}

func TestOutcomeOf(t *testing.T) {
	cases := map[error]Outcome{
		nil:                  OutcomeValid,
		ErrTokenMalformed:    OutcomeMalformed,
		ErrTokenBadSignature: OutcomeBadSignature,
		ErrTokenExpired:      OutcomeExpired,
		ErrTokenNotYetValid:  OutcomeNotYetValid,
		errors.New("other"):  OutcomeMalformed,
	}
	for err, want := range cases {
		if got := OutcomeOf(err); got != want {
			t.Fatalf("OutcomeOf(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestParseClaimCollisionPolicy(t *testing.T) {
	for input, want := range map[string]ClaimCollisionPolicy{"": RejectReserved, "reject": RejectReserved, "Reserved-Wins": ReservedWins} {
		got, err := ParseClaimCollisionPolicy(input)
		if err != nil || got != want {
			t.Fatalf("ParseClaimCollisionPolicy(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseClaimCollisionPolicy("merge"); err == nil {
		t.Fatal("expected unknown policy to fail")
	}
}

func BenchmarkSignEd25519(b *testing.B) {
	pair, _ := newEdPair(b)
	m := newTestManager(b, pair, nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Sign("bench", "app", 5, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyEd25519(b *testing.B) {
	pair, _ := newEdPair(b)
	m := newTestManager(b, pair, nil)
	token, err := m.Sign("bench", "app", 5, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Verify(token); err != nil {
			b.Fatal(err)
		}
	}
}
