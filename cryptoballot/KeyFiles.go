package cryptoballot

import (
	"bytes"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/phayes/decryptpem"
	"github.com/phayes/errors"
)

var (
	ErrKeyPersist  = errors.New("Could not write RSA key files")
	ErrKeyMismatch = errors.New("Public key file does not match the private key")
)

// KeyFiles are the two storage locations of the authority's key pair.
// The private key is only ever written to PrivatePath.
type KeyFiles struct {
	PrivatePath string
	PublicPath  string
}

// Load reads the private key and the public key and checks that they belong together.
// If the private key PEM is encrypted the passphrase is prompted for on the terminal.
// With no PublicPath the public key is derived from the private key.
func (kf KeyFiles) Load() (PrivateKey, PublicKey, error) {
	PEMBlock, err := decryptpem.DecryptFileWithPrompt(kf.PrivatePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, ErrKeyLoad)
	}
	priv, err := NewPrivateKeyFromBlock(PEMBlock)
	if err != nil {
		return nil, nil, err
	}

	derived, err := priv.PublicKey()
	if err != nil {
		return nil, nil, errors.Wrap(err, ErrKeyLoad)
	}
	if kf.PublicPath == "" {
		return priv, derived, nil
	}

	pub, err := kf.LoadPublicKey()
	if err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(derived.Bytes(), pub.Bytes()) {
		return nil, nil, ErrKeyMismatch
	}

	return priv, pub, nil
}

// LoadPublicKey reads only the public half. This is all a voter or an auditor needs.
func (kf KeyFiles) LoadPublicKey() (PublicKey, error) {
	raw, err := ioutil.ReadFile(kf.PublicPath)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyLoad)
	}
	return NewPublicKey(raw)
}

// Persist writes the private key (mode 0600) and its public key (mode 0644) to their separate locations.
// A non-empty passphrase encrypts the private key PEM block.
func (kf KeyFiles) Persist(priv PrivateKey, passphrase []byte) error {
	pub, err := priv.PublicKey()
	if err != nil {
		return errors.Wrap(err, ErrKeyPersist)
	}

	privBlock := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: priv.Bytes(),
	}
	if len(passphrase) != 0 {
		//lint:ignore SA1019 legacy PEM encryption is the format decryptpem reads back
		privBlock, err = x509.EncryptPEMBlock(rand.Reader, privBlock.Type, privBlock.Bytes, passphrase, x509.PEMCipherAES256)
		if err != nil {
			return errors.Wrap(err, ErrKeyPersist)
		}
	}

	if err := writeFile(kf.PrivatePath, pem.EncodeToMemory(privBlock), 0600); err != nil {
		return err
	}
	return writeFile(kf.PublicPath, []byte(pub.String()), 0644)
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, ErrKeyPersist)
	}
	if err := ioutil.WriteFile(path, data, perm); err != nil {
		return errors.Wrap(err, ErrKeyPersist)
	}
	return nil
}
