package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"
)

const (
	encryptedPrivateKeyBlock = "ENCRYPTED PRIVATE KEY"
	publicKeyBlock           = "PUBLIC KEY"
	minRSABits               = 2048
)

// KeyPair is an asymmetric signing key with its public half and the JWS
// algorithm bound to its type and size. It is read-only after load.
type KeyPair struct {
	private crypto.Signer
	public  crypto.PublicKey
	method  jwt.SigningMethod
}

// Algorithm returns the JWS "alg" bound to the key.
func (k *KeyPair) Algorithm() string {
	return k.method.Alg()
}

// Public returns the verification key.
func (k *KeyPair) Public() crypto.PublicKey {
	return k.public
}

// LoadKeyPair decrypts a passphrase-protected PKCS#8 private key, parses the
// PKIX public key and checks that both halves belong together. Any failure is
// a *KeyLoadError.
//
// Accepted keys: RSA of at least 2048 bits (RS512), ECDSA P-256, P-384 and
// P-521 (ES256, ES384, ES512), and Ed25519 (EdDSA).
func LoadKeyPair(encryptedPrivatePEM, passphrase, publicPEM []byte) (*KeyPair, error) {
	if len(passphrase) == 0 {
		return nil, keyLoadError("decrypt private key", errors.New("empty passphrase"))
	}

	block, _ := pem.Decode(encryptedPrivatePEM)
	if block == nil {
		return nil, keyLoadError("decode private key", errors.New("no PEM block found"))
	}
	if block.Type != encryptedPrivateKeyBlock {
		return nil, keyLoadError("decode private key", fmt.Errorf("unexpected PEM block %q", block.Type))
	}

	parsed, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, passphrase)
	if err != nil {
		return nil, keyLoadError("decrypt private key", err)
	}
	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, keyLoadError("decrypt private key", fmt.Errorf("unsupported key type %T", parsed))
	}

	pubBlock, _ := pem.Decode(publicPEM)
	if pubBlock == nil {
		return nil, keyLoadError("decode public key", errors.New("no PEM block found"))
	}
	if pubBlock.Type != publicKeyBlock {
		return nil, keyLoadError("decode public key", fmt.Errorf("unexpected PEM block %q", pubBlock.Type))
	}
	public, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	if err != nil {
		return nil, keyLoadError("parse public key", err)
	}

	pair, err := newKeyPair(signer)
	if err != nil {
		return nil, err
	}

	eq, ok := public.(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !eq.Equal(pair.public) {
		return nil, keyLoadError("match key pair", errors.New("public key does not belong to private key"))
	}

	return pair, nil
}

// NewKeyPair wraps an in-memory private key. It applies the same type and
// size rules as LoadKeyPair.
func NewKeyPair(private crypto.Signer) (*KeyPair, error) {
	return newKeyPair(private)
}

func newKeyPair(private crypto.Signer) (*KeyPair, error) {
	method, err := methodFor(private)
	if err != nil {
		return nil, keyLoadError("bind algorithm", err)
	}
	return &KeyPair{
		private: private,
		public:  private.Public(),
		method:  method,
	}, nil
}

func methodFor(private crypto.Signer) (jwt.SigningMethod, error) {
	switch key := private.(type) {
	case *rsa.PrivateKey:
		if key.N.BitLen() < minRSABits {
			return nil, fmt.Errorf("rsa key of %d bits is below %d", key.N.BitLen(), minRSABits)
		}
		return jwt.SigningMethodRS512, nil
	case *ecdsa.PrivateKey:
		switch key.Curve {
		case elliptic.P256():
			return jwt.SigningMethodES256, nil
		case elliptic.P384():
			return jwt.SigningMethodES384, nil
		case elliptic.P521():
			return jwt.SigningMethodES512, nil
		default:
			return nil, errors.New("unsupported ecdsa curve")
		}
	case ed25519.PrivateKey:
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", private)
	}
}

// EncodeKeyPair serialises private as passphrase-encrypted PKCS#8 PEM and its
// public half as PKIX PEM, the inputs LoadKeyPair expects.
func EncodeKeyPair(private crypto.Signer, passphrase []byte) (privatePEM, publicPEM []byte, err error) {
	if len(passphrase) == 0 {
		return nil, nil, errors.New("passphrase must not be empty")
	}
	if _, err := methodFor(private); err != nil {
		return nil, nil, err
	}

	der, err := pkcs8.MarshalPrivateKey(private, passphrase, nil)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(private.Public())
	if err != nil {
		return nil, nil, err
	}

	privatePEM = pem.EncodeToMemory(&pem.Block{Type: encryptedPrivateKeyBlock, Bytes: der})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: publicKeyBlock, Bytes: pubDER})
	return privatePEM, publicPEM, nil
}
