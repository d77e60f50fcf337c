package signer

import (
	"fmt"
	"path/filepath"

	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
	"github.com/sirupsen/logrus"
)

// ReleaseSigner signs a manifest file on disk, producing an inline
// clear-signed copy and a detached armored signature over the same bytes.
type ReleaseSigner interface {
	ClearSign(source, destination string) error
	DetachedSign(source, destination string) error
}

// SignRelease produces InRelease and Release.gpg next to the manifest.
//
// Stale signature files are removed first in every case, signing configured or
// not: the moment a new manifest exists, old signatures are invalid, and a
// stale signature is worse than a missing one. A nil signer leaves the
// repository honestly unsigned. A failed signing invocation removes any
// half-written artifact before propagating.
func SignRelease(s ReleaseSigner, releasePath string) error {
	dir := filepath.Dir(releasePath)
	inRelease := filepath.Join(dir, "InRelease")
	releaseGpg := filepath.Join(dir, "Release.gpg")

	if err := RemoveStaleSignatures(dir); err != nil {
		return err
	}

	if s == nil {
		logrus.Warn("No signing key configured, repository will be unsigned")
		return nil
	}

	if err := s.ClearSign(releasePath, inRelease); err != nil {
		return signingFailed(inRelease, releaseGpg, fmt.Errorf("failed to sign InRelease: %w", err))
	}
	if err := s.DetachedSign(releasePath, releaseGpg); err != nil {
		return signingFailed(inRelease, releaseGpg, fmt.Errorf("failed to create Release.gpg: %w", err))
	}

	logrus.Info("Release manifest signed")
	return nil
}

// RemoveStaleSignatures deletes any InRelease and Release.gpg in dir. It runs
// before any manifest work: even a run that fails before producing a new
// manifest must not leave signatures that vouch for bytes about to change.
func RemoveStaleSignatures(dir string) error {
	for _, stale := range []string{filepath.Join(dir, "InRelease"), filepath.Join(dir, "Release.gpg")} {
		if err := utils.RemoveIfExists(stale); err != nil {
			return &models.RepoError{Type: models.ErrFilesystem, Path: stale, Err: err}
		}
	}
	return nil
}

func signingFailed(inRelease, releaseGpg string, err error) error {
	// Never leave a partially signed repository behind
	_ = utils.RemoveIfExists(inRelease)
	_ = utils.RemoveIfExists(releaseGpg)
	return &models.RepoError{Type: models.ErrSigning, Err: err}
}
