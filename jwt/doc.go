// Package jwt issues and verifies signed, time-bounded bearer tokens using a
// single asymmetric key pair loaded from encrypted PKCS#8 material.
//
// The signing algorithm is bound once from the key type at load time and is
// the only algorithm Verify accepts, so "none" and algorithm-confusion tokens
// fail as bad signatures.
package jwt
