// Package authkit provides credential registration, password login and bearer-token
// validation on top of the password and jwt packages.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (MetricsSnapshot, AuthResult, LoginResult). Hashing lives in password, token signing in
// jwt, persistence behind [UserStore] (see credstore). Audit dispatch and metric storage
// live under internal/ and are never exported directly.
//
// # What this package must NOT do
//
//   - Return the reason for a credential or token failure to callers; reasons go to
//     metrics, audit events and debug logs only.
//   - Log or audit plaintext passwords, stored hashes or token strings.
//   - Perform I/O outside of Engine methods (construction via Builder touches no store).
//
// # Performance contract
//
// Validate is the hot path. It performs no store round-trips; it verifies the signature
// and time claims only. Register and Login perform one password hash or verify and at
// most two store round-trips.
package authkit
