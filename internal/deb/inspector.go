package deb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
	"github.com/sirupsen/logrus"
)

// Inspect produces a fully populated package record for one archive: control
// fields, installed-file list, size, and all four checksums. A record is only
// handed downstream once every one of those is in place.
func Inspect(ctx context.Context, extractor Extractor, path string) (*models.Package, error) {
	logrus.Debugf("Inspecting package archive: %s", path)

	control, err := extractor.Control(ctx, path)
	if err != nil {
		return nil, toolError(path, fmt.Errorf("failed to extract control metadata: %w", err))
	}

	fields, err := ParseControl(control)
	if err != nil {
		if errors.Is(err, ErrUnknownControlLine) {
			return nil, &models.RepoError{Type: models.ErrUnknownMetadata, Path: path, Err: err}
		}
		return nil, toolError(path, err)
	}

	listing, err := extractor.Contents(ctx, path)
	if err != nil {
		return nil, toolError(path, fmt.Errorf("failed to extract content listing: %w", err))
	}

	pkg := &models.Package{
		Filename: path,
		Fields:   fields,
		Contents: ParseListing(listing),
	}

	digests := utils.NewFileDigests(path)
	if pkg.Size, err = digests.Size(); err != nil {
		return nil, toolError(path, err)
	}
	if pkg.MD5Sum, err = digests.Digest(utils.MD5); err != nil {
		return nil, toolError(path, err)
	}
	if pkg.SHA1Sum, err = digests.Digest(utils.SHA1); err != nil {
		return nil, toolError(path, err)
	}
	if pkg.SHA256Sum, err = digests.Digest(utils.SHA256); err != nil {
		return nil, toolError(path, err)
	}
	if pkg.SHA512Sum, err = digests.Digest(utils.SHA512); err != nil {
		return nil, toolError(path, err)
	}

	return pkg, nil
}

func toolError(path string, err error) error {
	kind := models.ErrTool
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		kind = models.ErrFilesystem
	}
	return &models.RepoError{Type: kind, Path: path, Err: err}
}
