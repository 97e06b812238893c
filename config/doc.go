// Package config loads deployment settings for the authkit commands from a
// YAML file with environment overrides, validates them, and turns them into
// an [authkit.Config] and a loaded [jwt.KeyPair].
//
// Environment variables override YAML keys by path: KEYS_PASSPHRASE sets
// keys.passphrase, TOKEN_CLAIMCOLLISION sets token.claimCollision. Segments
// are matched against the keys already present in the file, so camel-case
// names survive the upper-case environment form.
package config
