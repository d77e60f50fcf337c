package index

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
	"github.com/sirupsen/logrus"
)

// Build writes every per-architecture artifact below <root>/dists/<codename>:
// the package index (plain, gzip, bzip2), a per-architecture Release stub, and
// the compressed file-location index. It returns the concrete architectures
// and the generated file paths relative to the dists/<codename> directory, in
// the order they were written.
//
// Compression is a pass-through of the finalized uncompressed bytes; the
// uncompressed Contents file is transient and removed once its .gz exists.
func Build(cfg *models.RepositoryConfig, packages []*models.Package) ([]string, []string, error) {
	distsDir := filepath.Join(cfg.RootDir, "dists", cfg.Codename)
	component := cfg.Components[0]

	arches, grouped := GroupByArchitecture(packages)

	var generated []string
	for _, arch := range arches {
		logrus.Infof("Generating indices for architecture %s (%d packages)", arch, len(grouped[arch]))

		binDir := fmt.Sprintf("%s/binary-%s", component, arch)

		data, err := GeneratePackagesIndex(grouped[arch])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate Packages for %s: %w", arch, err)
		}

		packagesPath := filepath.Join(distsDir, binDir, "Packages")
		if err := utils.WriteFile(packagesPath, data, 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to write Packages: %w", err)
		}
		if err := utils.GzipFile(packagesPath); err != nil {
			return nil, nil, fmt.Errorf("failed to compress Packages: %w", err)
		}
		if err := utils.Bzip2File(packagesPath); err != nil {
			return nil, nil, fmt.Errorf("failed to compress Packages: %w", err)
		}
		generated = append(generated,
			binDir+"/Packages", binDir+"/Packages.gz", binDir+"/Packages.bz2")

		stub := archRelease(cfg, component, arch)
		if err := utils.WriteFile(filepath.Join(distsDir, binDir, "Release"), stub, 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to write binary Release: %w", err)
		}
		generated = append(generated, binDir+"/Release")

		contentsPath := filepath.Join(distsDir, component, "Contents-"+arch)
		if err := utils.WriteFile(contentsPath, GenerateContentsIndex(grouped[arch]), 0644); err != nil {
			return nil, nil, fmt.Errorf("failed to write Contents: %w", err)
		}
		if err := utils.GzipFile(contentsPath); err != nil {
			return nil, nil, fmt.Errorf("failed to compress Contents: %w", err)
		}
		if err := os.Remove(contentsPath); err != nil {
			return nil, nil, fmt.Errorf("failed to remove uncompressed Contents: %w", err)
		}
		generated = append(generated, component+"/Contents-"+arch+".gz")
	}

	return arches, generated, nil
}

// archRelease renders the descriptive per-architecture Release stub. It is
// not consulted elsewhere in the pipeline.
func archRelease(cfg *models.RepositoryConfig, component, arch string) []byte {
	var buf bytes.Buffer
	if cfg.Origin != "" {
		fmt.Fprintf(&buf, "Origin: %s\n", cfg.Origin)
	}
	if cfg.Label != "" {
		fmt.Fprintf(&buf, "Label: %s\n", cfg.Label)
	}
	fmt.Fprintf(&buf, "Codename: %s\n", cfg.Codename)
	fmt.Fprintf(&buf, "Component: %s\n", component)
	fmt.Fprintf(&buf, "Architecture: %s\n", arch)
	return buf.Bytes()
}
