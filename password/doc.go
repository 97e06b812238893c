// Package password implements one-way password hashing with algorithm agility.
//
// # Output format
//
// Hashes are self-describing strings. The primary algorithm is Argon2id in PHC
// string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The fallback algorithm is PBKDF2 with HMAC-SHA512:
//
//	$pbkdf2-sha512$<iterations>$<salt>$<hash>
//
// Salt and hash segments are standard base64; both padded and unpadded forms are
// accepted on decode. The algorithm tag is decoded once into an [Algorithm] and
// verification always uses the parameters embedded in the stored string.
//
// The [Hasher] supports transparent parameter upgrades: [Hasher.NeedsRehash]
// reports true for every fallback hash and for Argon2id hashes whose memory,
// time or parallelism is below the configured baseline, so the caller can
// re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length, reuse
// history) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other authkit package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
