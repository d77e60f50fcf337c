package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ralt/aptgen/internal/models"
)

// OpenPGPSigner signs in-process with the openpgp library, without any
// external tooling or on-disk keyring state.
type OpenPGPSigner struct {
	entity *openpgp.Entity
}

var openpgpConfig = &packet.Config{DefaultHash: crypto.SHA512}

// NewOpenPGPSigner loads the key material file and selects the entity matching
// the configured key identity, decrypting it with the passphrase if needed.
func NewOpenPGPSigner(cfg *models.RepositoryConfig) (*OpenPGPSigner, error) {
	if cfg.SecretKeyring == "" {
		return nil, fmt.Errorf("internal pgp provider requires a secret keyring file")
	}

	keyFile, err := os.Open(cfg.SecretKeyring)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer keyFile.Close()

	// Try armored first, fall back to binary
	entities, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		if _, serr := keyFile.Seek(0, 0); serr != nil {
			return nil, serr
		}
		entities, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key material: %w", err)
		}
	}

	entity, err := selectEntity(entities, cfg.GPGKey)
	if err != nil {
		return nil, err
	}

	passphrase := cfg.GPGPassphrase
	if passphrase == "" && cfg.PassphraseFile != "" {
		data, err := os.ReadFile(cfg.PassphraseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase file: %w", err)
		}
		passphrase = strings.TrimRight(string(data), "\r\n")
	}

	if passphrase != "" {
		if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
			if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
		}
		for _, subkey := range entity.Subkeys {
			if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
				if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
					return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
				}
			}
		}
	}

	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("key material contains no private key for %q", cfg.GPGKey)
	}

	return &OpenPGPSigner{entity: entity}, nil
}

func selectEntity(entities openpgp.EntityList, keyRef string) (*openpgp.Entity, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in key material")
	}
	if keyRef == "" {
		return entities[0], nil
	}

	ref := strings.ToUpper(keyRef)
	for _, entity := range entities {
		keyID := fmt.Sprintf("%016X", entity.PrimaryKey.KeyId)
		if strings.HasSuffix(keyID, ref) {
			return entity, nil
		}
		for name := range entity.Identities {
			if strings.Contains(name, keyRef) {
				return entity, nil
			}
		}
	}

	return nil, fmt.Errorf("no key matching %q in key material", keyRef)
}

// ClearSign writes an inline clear-signed copy of source to destination.
func (s *OpenPGPSigner) ClearSign(source, destination string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := clearsign.Encode(&buf, s.entity.PrivateKey, openpgpConfig)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	return os.WriteFile(destination, buf.Bytes(), 0644)
}

// DetachedSign writes a detached armored signature of source to destination.
func (s *OpenPGPSigner) DetachedSign(source, destination string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), openpgpConfig); err != nil {
		return fmt.Errorf("failed to create detached signature: %w", err)
	}

	return os.WriteFile(destination, buf.Bytes(), 0644)
}
