package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authkit/jwt"
)

func TestRunWritesLoadableKeyPair(t *testing.T) {
	cases := []struct {
		keyType string
		curve   string
		alg     string
	}{
		{keyType: "ed25519", alg: "EdDSA"},
		{keyType: "ecdsa", curve: "P-256", alg: "ES256"},
		{keyType: "ecdsa", curve: "P-384", alg: "ES384"},
		{keyType: "rsa", alg: "RS512"},
	}

	for _, tc := range cases {
		t.Run(tc.keyType+tc.curve, func(t *testing.T) {
			dir := t.TempDir()
			privPath, pubPath, alg, err := run(options{
				keyType:    tc.keyType,
				rsaBits:    2048,
				curve:      tc.curve,
				outDir:     dir,
				name:       "test",
				passphrase: "secret",
			})
			require.NoError(t, err)
			assert.Equal(t, tc.alg, alg)

			privatePEM, err := os.ReadFile(privPath)
			require.NoError(t, err)
			publicPEM, err := os.ReadFile(pubPath)
			require.NoError(t, err)

			pair, err := jwt.LoadKeyPair(privatePEM, []byte("secret"), publicPEM)
			require.NoError(t, err)
			assert.Equal(t, tc.alg, pair.Algorithm())

			info, err := os.Stat(privPath)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
}

func TestRunRequiresPassphrase(t *testing.T) {
	_, _, _, err := run(options{keyType: "ed25519", outDir: t.TempDir(), name: "k"})
	require.Error(t, err)
}

func TestRunRejectsUnsupportedInput(t *testing.T) {
	dir := t.TempDir()
	base := options{outDir: dir, name: "k", passphrase: "secret", rsaBits: 1024}

	for _, opts := range []options{
		{keyType: "dsa"},
		{keyType: "ecdsa", curve: "P-224"},
		{keyType: "rsa"},
	} {
		opts.outDir, opts.name, opts.passphrase = base.outDir, base.name, base.passphrase
		if opts.rsaBits == 0 {
			opts.rsaBits = base.rsaBits
		}
		_, _, _, err := run(opts)
		assert.Error(t, err, "type=%s curve=%s", opts.keyType, opts.curve)
	}
}

func TestRunRefusesToOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	opts := options{keyType: "ed25519", outDir: dir, name: "k", passphrase: "secret"}

	_, _, _, err := run(opts)
	require.NoError(t, err)

	_, _, _, err = run(opts)
	require.Error(t, err)

	opts.force = true
	_, pubPath, _, err := run(opts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Clean(pubPath))
}
