// Package credstore persists user credential records for the authkit Engine.
//
// A record binds a user id to a normalised identifier and the stored password
// hash exactly as the hasher produced it. Stores never interpret the hash.
//
// # What this package must NOT do
//
//   - Import authkit or any sibling internal package.
//   - Log or expose stored hashes.
package credstore
