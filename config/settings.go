package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/jwt"
)

// Settings is the deployment configuration of the authkit server.
type Settings struct {
	Env struct {
		Name        string `json:"name" yaml:"name"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port            int           `json:"port" yaml:"port" validate:"min=1,max=65535"`
		ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" validate:"min=0"`
	} `json:"http" yaml:"http"`

	Keys Keys `json:"keys" yaml:"keys"`

	Token struct {
		Issuer         string        `json:"issuer" yaml:"issuer"`
		Audience       string        `json:"audience" yaml:"audience"`
		TTL            time.Duration `json:"ttl" yaml:"ttl" validate:"min=1m"`
		Leeway         time.Duration `json:"leeway" yaml:"leeway" validate:"min=0,max=2m"`
		ClaimCollision string        `json:"claimCollision" yaml:"claimCollision" validate:"omitempty,oneof=reject reject-reserved reserved-wins"`
	} `json:"token" yaml:"token"`

	Password struct {
		Argon2 struct {
			Memory      uint32 `json:"memory" yaml:"memory" validate:"min=8192,max=1048576"`
			Iterations  uint32 `json:"iterations" yaml:"iterations" validate:"min=1,max=64"`
			Parallelism uint8  `json:"parallelism" yaml:"parallelism" validate:"min=1,max=16"`
		} `json:"argon2" yaml:"argon2"`
		PBKDF2Iterations int  `json:"pbkdf2Iterations" yaml:"pbkdf2Iterations" validate:"min=1000,max=10000000"`
		DisableArgon2    bool `json:"disableArgon2" yaml:"disableArgon2"`
		MinLength        int  `json:"minLength" yaml:"minLength" validate:"min=1"`
		MaxLength        int  `json:"maxLength" yaml:"maxLength" validate:"gtefield=MinLength"`
		UpgradeOnLogin   bool `json:"upgradeOnLogin" yaml:"upgradeOnLogin"`
	} `json:"password" yaml:"password"`

	Account struct {
		RequireEmailIdentifier bool `json:"requireEmailIdentifier" yaml:"requireEmailIdentifier"`
	} `json:"account" yaml:"account"`

	// Redis selects the credential store. An empty Addr means an embedded
	// in-process Redis for development.
	Redis struct {
		Addr     string `json:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
		Password string `json:"password" yaml:"password"`
		DB       int    `json:"db" yaml:"db" validate:"min=0"`
		Prefix   string `json:"prefix" yaml:"prefix"`
	} `json:"redis" yaml:"redis"`

	Metrics struct {
		Enabled           bool `json:"enabled" yaml:"enabled"`
		LatencyHistograms bool `json:"latencyHistograms" yaml:"latencyHistograms"`
	} `json:"metrics" yaml:"metrics"`

	Audit struct {
		Enabled    bool `json:"enabled" yaml:"enabled"`
		BufferSize int  `json:"bufferSize" yaml:"bufferSize" validate:"min=0"`
		DropIfFull bool `json:"dropIfFull" yaml:"dropIfFull"`
	} `json:"audit" yaml:"audit"`
}

// Log selects the slog handler and level.
type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// Keys locates the signing key material. The private key file holds an
// encrypted PKCS#8 PEM block; the public key file holds a PKIX PEM block.
type Keys struct {
	PrivateKeyFile string `json:"privateKeyFile" yaml:"privateKeyFile" validate:"required"`
	PublicKeyFile  string `json:"publicKeyFile" yaml:"publicKeyFile" validate:"required"`
	Passphrase     string `json:"passphrase" yaml:"passphrase" validate:"required"`
}

// SetDefaults seeds the values used when the file and environment are silent.
func (s *Settings) SetDefaults() {
	def := authkit.DefaultConfig()

	s.Env.ServiceName = "authkit"
	s.Env.Log.Level = "info"
	s.HTTP.Port = 8080
	s.HTTP.ShutdownTimeout = 10 * time.Second

	s.Token.Issuer = def.Token.Issuer
	s.Token.Audience = def.Token.Audience
	s.Token.TTL = time.Duration(def.Token.TTLMinutes) * time.Minute
	s.Token.ClaimCollision = def.Token.ClaimCollision.String()

	s.Password.Argon2.Memory = def.Password.Memory
	s.Password.Argon2.Iterations = def.Password.Time
	s.Password.Argon2.Parallelism = def.Password.Parallelism
	s.Password.PBKDF2Iterations = def.Password.PBKDF2Iterations
	s.Password.MinLength = def.Password.MinLength
	s.Password.MaxLength = def.Password.MaxLength
	s.Password.UpgradeOnLogin = def.Password.UpgradeOnLogin

	s.Account.RequireEmailIdentifier = def.Account.RequireEmailIdentifier

	s.Redis.Prefix = "ak"

	s.Metrics.Enabled = def.Metrics.Enabled
	s.Audit.BufferSize = def.Audit.BufferSize
	s.Audit.DropIfFull = def.Audit.DropIfFull
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of the settings.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	return nil
}

// Load reads <env>.yaml from paths, applies defaults and environment
// overrides, and validates the result.
func Load(env string, paths ...string) (*Settings, error) {
	s, err := LoadWithEnv[Settings](env, paths...)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// AuthConfig maps the settings onto an [authkit.Config]. Fields the settings
// do not expose keep their [authkit.DefaultConfig] values.
func (s *Settings) AuthConfig() (authkit.Config, error) {
	cfg := authkit.DefaultConfig()

	policy, err := jwt.ParseClaimCollisionPolicy(s.Token.ClaimCollision)
	if err != nil {
		return authkit.Config{}, errors.Wrap(err, "token.claimCollision")
	}

	cfg.Token.Issuer = strings.TrimSpace(s.Token.Issuer)
	cfg.Token.Audience = s.Token.Audience
	cfg.Token.TTLMinutes = int(s.Token.TTL / time.Minute)
	cfg.Token.Leeway = s.Token.Leeway
	cfg.Token.ClaimCollision = policy

	cfg.Password.Memory = s.Password.Argon2.Memory
	cfg.Password.Time = s.Password.Argon2.Iterations
	cfg.Password.Parallelism = s.Password.Argon2.Parallelism
	cfg.Password.PBKDF2Iterations = s.Password.PBKDF2Iterations
	cfg.Password.DisableArgon2 = s.Password.DisableArgon2
	cfg.Password.MinLength = s.Password.MinLength
	cfg.Password.MaxLength = s.Password.MaxLength
	cfg.Password.UpgradeOnLogin = s.Password.UpgradeOnLogin

	cfg.Account.RequireEmailIdentifier = s.Account.RequireEmailIdentifier

	cfg.Metrics.Enabled = s.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = s.Metrics.LatencyHistograms

	cfg.Audit.Enabled = s.Audit.Enabled
	cfg.Audit.BufferSize = s.Audit.BufferSize
	cfg.Audit.DropIfFull = s.Audit.DropIfFull

	if err := cfg.Validate(); err != nil {
		return authkit.Config{}, errors.Wrap(err, "invalid auth config")
	}
	return cfg, nil
}

// ReadKeyMaterial reads both key files. The core only ever sees the bytes.
func ReadKeyMaterial(k Keys) (privatePEM, publicPEM []byte, err error) {
	privatePEM, err = os.ReadFile(k.PrivateKeyFile)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read private key %s", k.PrivateKeyFile)
	}
	publicPEM, err = os.ReadFile(k.PublicKeyFile)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read public key %s", k.PublicKeyFile)
	}
	return privatePEM, publicPEM, nil
}

// LoadKeyPair reads and decrypts the configured key pair.
func LoadKeyPair(k Keys) (*jwt.KeyPair, error) {
	privatePEM, publicPEM, err := ReadKeyMaterial(k)
	if err != nil {
		return nil, err
	}
	keys, err := jwt.LoadKeyPair(privatePEM, []byte(k.Passphrase), publicPEM)
	if err != nil {
		return nil, errors.Wrap(err, "load signing key pair")
	}
	return keys, nil
}
