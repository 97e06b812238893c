package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"keys": map[string]any{
			"privateKeyFile": "",
			"passphrase":     "",
		},
		"token": map[string]any{
			"claimCollision": "reject",
		},
		"password": map[string]any{
			"argon2": map[string]any{
				"memory": 65536,
			},
			"pbkdf2Iterations": 600000,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "KEYS_PRIVATEKEYFILE", want: "keys.privateKeyFile"},
		{envKey: "KEYS_PASSPHRASE", want: "keys.passphrase"},
		{envKey: "TOKEN_CLAIMCOLLISION", want: "token.claimCollision"},
		{envKey: "PASSWORD_ARGON2_MEMORY", want: "password.argon2.memory"},
		{envKey: "PASSWORD_PBKDF2ITERATIONS", want: "password.pbkdf2Iterations"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestOverridesSection(t *testing.T) {
	existing := map[string]any{
		"keys":  map[string]any{"passphrase": ""},
		"token": "flat",
	}

	tests := []struct {
		key  string
		want bool
	}{
		{key: "keys.passphrase", want: true},
		{key: "keys.newField", want: true},
		{key: "keys", want: false},
		{key: "path", want: false},
		{key: "home.dir", want: false},
		{key: "token.ttl", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := overridesSection(tt.key, existing); got != tt.want {
				t.Fatalf("overridesSection(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
