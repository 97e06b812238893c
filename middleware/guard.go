package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/authkit"
)

// DefaultPublicPrefixes are path prefixes served without a token.
var DefaultPublicPrefixes = []string{"/api/public", "/api/auth"}

// UnauthorizedBody is the JSON body of every rejected request.
const UnauthorizedBody = `{"error":"unauthorized"}`

// Validator is the part of [authkit.Engine] the guards need.
type Validator interface {
	Validate(ctx context.Context, token string) (*authkit.AuthResult, error)
}

type options struct {
	publicPrefixes []string
}

// Option configures a guard.
type Option func(*options)

// WithPublicPrefixes replaces [DefaultPublicPrefixes]. Passing no prefixes
// protects every path.
func WithPublicPrefixes(prefixes ...string) Option {
	return func(o *options) {
		o.publicPrefixes = prefixes
	}
}

func buildOptions(opts []Option) options {
	o := options{publicPrefixes: DefaultPublicPrefixes}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) isPublic(path string) bool {
	for _, prefix := range o.publicPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type authResultContextKey struct{}

// AuthResultFromContext returns the result injected by a guard.
func AuthResultFromContext(ctx context.Context) (*authkit.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*authkit.AuthResult)
	return res, ok && res != nil
}

// SubjectFromContext returns the authenticated user id, or "" on public paths.
func SubjectFromContext(ctx context.Context) string {
	res, ok := AuthResultFromContext(ctx)
	if !ok {
		return ""
	}
	return res.UserID
}

// WithAuthResult attaches res to ctx the way the guards do.
func WithAuthResult(ctx context.Context, res *authkit.AuthResult) context.Context {
	return context.WithValue(ctx, authResultContextKey{}, res)
}

// Guard describes the guard operation and its observable behavior.
//
// Requests on a public prefix pass through untouched. Everything else needs
// "Authorization: Bearer <token>" that the engine accepts; otherwise the
// response is 401 with [UnauthorizedBody].
func Guard(engine Validator, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if o.isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			res, ok := authenticate(r.Context(), engine, r.Header.Get("Authorization"), r.RemoteAddr)
			if !ok {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthResult(r.Context(), res)))
		})
	}
}

func authenticate(ctx context.Context, engine Validator, header, remoteAddr string) (*authkit.AuthResult, bool) {
	if engine == nil {
		return nil, false
	}
	token, ok := bearerToken(header)
	if !ok {
		return nil, false
	}
	if ip := clientIP(remoteAddr); ip != "" {
		ctx = authkit.WithClientIP(ctx, ip)
	}

	res, err := engine.Validate(ctx, token)
	if err != nil || res == nil {
		return nil, false
	}
	return res, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(UnauthorizedBody))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
