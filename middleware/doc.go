// Package middleware exposes HTTP middleware that gates requests on a valid
// bearer token, for net/http and for echo.
//
// # Guards
//
//   - [Guard] wraps a net/http handler.
//   - [EchoGuard] is the echo equivalent and also sets "userId" on the echo
//     context.
//
// Both read the Authorization header, call Engine.Validate, skip the
// configured public path prefixes, and inject the [authkit.AuthResult] into
// the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT parse
// tokens itself; every decision is delegated to Engine.Validate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Reveal why a token was rejected. Every failure is the same 401.
package middleware
