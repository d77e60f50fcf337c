package signer

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/ralt/aptgen/internal/models"
	"github.com/sirupsen/logrus"
)

// GpgSigner signs with the external gpg binary. When key material is
// configured it never touches the ambient keyring: the material is imported
// into a private, process-local home directory that is removed on every exit
// path, including failures.
type GpgSigner struct {
	keyRef         string
	passphrase     string
	passphraseFile string
	secretKeyring  string
}

// NewGpgSigner creates a gpg-backed signer from the run configuration.
func NewGpgSigner(cfg *models.RepositoryConfig) *GpgSigner {
	return &GpgSigner{
		keyRef:         cfg.GPGKey,
		passphrase:     cfg.GPGPassphrase,
		passphraseFile: cfg.PassphraseFile,
		secretKeyring:  cfg.SecretKeyring,
	}
}

// ClearSign writes an inline clear-signed copy of source to destination.
func (g *GpgSigner) ClearSign(source, destination string) error {
	return g.sign("--clearsign", source, destination)
}

// DetachedSign writes a detached armored signature of source to destination.
func (g *GpgSigner) DetachedSign(source, destination string) error {
	return g.sign("--detach-sign", source, destination)
}

func (g *GpgSigner) sign(op, source, destination string) error {
	args := []string{"--no-tty", "--batch", "--yes", "--armor"}

	if g.secretKeyring != "" {
		homedir, err := os.MkdirTemp("", "aptgen-keyring-")
		if err != nil {
			return fmt.Errorf("failed to create private keyring directory: %w", err)
		}
		defer os.RemoveAll(homedir)

		if err := os.Chmod(homedir, 0700); err != nil {
			return err
		}
		if err := runGpg("--homedir", homedir, "--batch", "--yes", "--quiet", "--import", g.secretKeyring); err != nil {
			return fmt.Errorf("failed to import key material: %w", err)
		}
		args = append([]string{"--homedir", homedir}, args...)

		return g.signWith(args, op, source, destination)
	}

	return g.signWith(args, op, source, destination)
}

func (g *GpgSigner) signWith(args []string, op, source, destination string) error {
	if g.keyRef != "" {
		args = append(args, "--local-user", g.keyRef)
	}
	if g.passphraseFile != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", g.passphraseFile)
	} else if g.passphrase != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase", g.passphrase)
	}
	args = append(args, op, "--output", destination, source)

	logrus.Debugf("Running gpg %s for %s", op, source)
	return runGpg(args...)
}

func runGpg(args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.Command("gpg", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gpg: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
