// Command authkit-keygen writes a signing key pair in the format the token
// service loads: a passphrase-encrypted PKCS#8 private key and a PKIX public
// key, both PEM encoded.
package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/MrEthical07/authkit/jwt"
)

const passphraseEnv = "AUTHKIT_KEY_PASSPHRASE"

type options struct {
	keyType    string
	rsaBits    int
	curve      string
	outDir     string
	name       string
	passphrase string
	force      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.keyType, "type", "rsa", "key type: rsa, ecdsa or ed25519")
	flag.IntVar(&opts.rsaBits, "bits", 4096, "rsa modulus size in bits")
	flag.StringVar(&opts.curve, "curve", "P-256", "ecdsa curve: P-256, P-384 or P-521")
	flag.StringVar(&opts.outDir, "out-dir", ".", "directory for the generated files")
	flag.StringVar(&opts.name, "name", "signing", "file name stem; writes <name>.key and <name>.pub")
	flag.StringVar(&opts.passphrase, "passphrase", "", "private key passphrase; defaults to $"+passphraseEnv)
	flag.BoolVar(&opts.force, "force", false, "overwrite existing files")
	flag.Parse()

	if opts.passphrase == "" {
		opts.passphrase = os.Getenv(passphraseEnv)
	}

	privPath, pubPath, alg, err := run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authkit-keygen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s and %s (%s)\n", privPath, pubPath, alg)
}

func run(opts options) (privPath, pubPath, alg string, err error) {
	if opts.passphrase == "" {
		return "", "", "", errors.Errorf("passphrase required: pass -passphrase or set %s", passphraseEnv)
	}

	private, err := generate(opts.keyType, opts.rsaBits, opts.curve)
	if err != nil {
		return "", "", "", err
	}

	// Round-trip through the loader so an unusable key never reaches disk.
	privatePEM, publicPEM, err := jwt.EncodeKeyPair(private, []byte(opts.passphrase))
	if err != nil {
		return "", "", "", errors.Wrap(err, "encode key pair")
	}
	pair, err := jwt.LoadKeyPair(privatePEM, []byte(opts.passphrase), publicPEM)
	if err != nil {
		return "", "", "", errors.Wrap(err, "reload key pair")
	}

	if err := os.MkdirAll(opts.outDir, 0o700); err != nil {
		return "", "", "", errors.Wrapf(err, "create %s", opts.outDir)
	}
	privPath = filepath.Join(opts.outDir, opts.name+".key")
	pubPath = filepath.Join(opts.outDir, opts.name+".pub")

	if err := writeFile(privPath, privatePEM, 0o600, opts.force); err != nil {
		return "", "", "", err
	}
	if err := writeFile(pubPath, publicPEM, 0o644, opts.force); err != nil {
		return "", "", "", err
	}
	return privPath, pubPath, pair.Algorithm(), nil
}

func generate(keyType string, bits int, curve string) (crypto.Signer, error) {
	switch keyType {
	case "rsa":
		if bits < 2048 {
			return nil, errors.Errorf("rsa keys need at least 2048 bits, got %d", bits)
		}
		return rsa.GenerateKey(rand.Reader, bits)
	case "ecdsa":
		var c elliptic.Curve
		switch curve {
		case "P-256":
			c = elliptic.P256()
		case "P-384":
			c = elliptic.P384()
		case "P-521":
			c = elliptic.P521()
		default:
			return nil, errors.Errorf("unsupported curve %q", curve)
		}
		return ecdsa.GenerateKey(c, rand.Reader)
	case "ed25519":
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	default:
		return nil, errors.Errorf("unsupported key type %q", keyType)
	}
}

func writeFile(path string, data []byte, perm os.FileMode, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
