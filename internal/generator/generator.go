package generator

import (
	"context"
	"path/filepath"

	"github.com/ralt/aptgen/internal/deb"
	"github.com/ralt/aptgen/internal/index"
	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/release"
	"github.com/ralt/aptgen/internal/scanner"
	"github.com/ralt/aptgen/internal/signer"
	"github.com/ralt/aptgen/internal/utils"
	"github.com/sirupsen/logrus"
)

// Generator runs the metadata pipeline: scan the pool, inspect every archive,
// build the architecture indices, write the manifest, sign it.
type Generator struct {
	extractor deb.Extractor
	signer    signer.ReleaseSigner
}

// NewGenerator creates a pipeline using the given extraction and signing
// capabilities. A nil signer produces an unsigned repository.
func NewGenerator(extractor deb.Extractor, s signer.ReleaseSigner) *Generator {
	return &Generator{extractor: extractor, signer: s}
}

// Generate builds the complete dists tree for the configured repository. Any
// error aborts the run: a partially rebuilt repository is unsafe to publish.
func (g *Generator) Generate(ctx context.Context, cfg *models.RepositoryConfig) error {
	logrus.Info("Generating repository metadata...")

	packages, err := g.inspectPool(ctx, cfg)
	if err != nil {
		return err
	}

	// All inspections are complete before any index is built, and all index
	// bytes (compressed variants included) are on disk before the manifest
	// records their checksums.
	arches, generated, err := index.Build(cfg, packages)
	if err != nil {
		return &models.RepoError{Type: models.ErrFilesystem, Err: err}
	}

	// Old signatures are invalid the moment new index bytes exist; drop them
	// before manifest work so even a failed run cannot leave a signed-but-wrong
	// repository behind.
	distsDir := filepath.Join(cfg.RootDir, "dists", cfg.Codename)
	if err := signer.RemoveStaleSignatures(distsDir); err != nil {
		return err
	}

	manifest, err := release.GenerateManifest(cfg, arches, distsDir, generated)
	if err != nil {
		return &models.RepoError{Type: models.ErrFilesystem, Err: err}
	}

	releasePath := filepath.Join(distsDir, "Release")
	if err := utils.WriteFile(releasePath, manifest, 0644); err != nil {
		return &models.RepoError{Type: models.ErrFilesystem, Path: releasePath, Err: err}
	}

	if err := signer.SignRelease(g.signer, releasePath); err != nil {
		return err
	}

	logrus.Info("Repository metadata generated successfully")
	return nil
}

func (g *Generator) inspectPool(ctx context.Context, cfg *models.RepositoryConfig) ([]*models.Package, error) {
	poolDir := filepath.Join(cfg.RootDir, cfg.PoolDir)
	sc := scanner.NewFileSystemScanner(filepath.Join(cfg.RootDir, "dists"))
	archives, err := sc.Scan(ctx, poolDir)
	if err != nil {
		return nil, err
	}

	packages := make([]*models.Package, 0, len(archives))
	for _, archive := range archives {
		pkg, err := deb.Inspect(ctx, g.extractor, archive)
		if err != nil {
			return nil, err
		}

		// Indices reference packages relative to the repository root
		rel, err := filepath.Rel(cfg.RootDir, archive)
		if err != nil {
			return nil, &models.RepoError{Type: models.ErrFilesystem, Path: archive, Err: err}
		}
		pkg.Filename = filepath.ToSlash(rel)

		logrus.Debugf("Inspected %s %s (%s)", pkg.Name(), pkg.Version(), pkg.Architecture())
		packages = append(packages, pkg)
	}

	if len(packages) == 0 {
		logrus.Warn("No package archives found in pool")
	}

	return packages, nil
}
