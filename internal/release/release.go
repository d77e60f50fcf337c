package release

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
	"github.com/sirupsen/logrus"
)

type fileInfo struct {
	path    string
	size    int64
	digests map[string]string
}

// GenerateManifest renders the top-level Release file binding the repository
// identity to every generated index file. Sizes and all four checksums are
// re-read from disk here, never copied from generation-time state, so the
// recorded values always match the final bytes even if post-processing altered
// them. Field order, per-algorithm blocks, path sorting, and the
// space-padded size column are the read contract APT clients rely on.
func GenerateManifest(cfg *models.RepositoryConfig, arches []string, distsDir string, files []string) ([]byte, error) {
	infos, err := checksumFiles(distsDir, files)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if cfg.Origin != "" {
		fmt.Fprintf(&buf, "Origin: %s\n", cfg.Origin)
	}
	if cfg.Label != "" {
		fmt.Fprintf(&buf, "Label: %s\n", cfg.Label)
	}
	fmt.Fprintf(&buf, "Suite: %s\n", cfg.Suite)
	fmt.Fprintf(&buf, "Codename: %s\n", cfg.Codename)
	fmt.Fprintf(&buf, "Date: %s\n", time.Now().UTC().Format("Mon, 2 Jan 2006 15:04:05 MST"))
	fmt.Fprintf(&buf, "Architectures: %s\n", strings.Join(arches, " "))
	fmt.Fprintf(&buf, "Components: %s\n", strings.Join(cfg.Components, " "))
	fmt.Fprintf(&buf, "Description: Generated by aptgen\n")

	// Size column is right-justified to the widest size among listed files
	width := 0
	for _, info := range infos {
		if l := len(strconv.FormatInt(info.size, 10)); l > width {
			width = l
		}
	}

	for _, algorithm := range utils.Algorithms {
		fmt.Fprintf(&buf, "%s:\n", algorithm)
		for _, info := range infos {
			fmt.Fprintf(&buf, " %s %*d %s\n", info.digests[algorithm], width, info.size, info.path)
		}
	}

	return buf.Bytes(), nil
}

// checksumFiles stats and hashes every generated file fresh from disk,
// returning entries sorted lexicographically by path.
func checksumFiles(distsDir string, files []string) ([]fileInfo, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	infos := make([]fileInfo, 0, len(sorted))
	for _, file := range sorted {
		logrus.Debugf("Checksumming index file %s", file)

		digests := utils.NewFileDigests(filepath.Join(distsDir, file))
		size, err := digests.Size()
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s: %w", file, err)
		}

		info := fileInfo{path: file, size: size, digests: make(map[string]string, len(utils.Algorithms))}
		for _, algorithm := range utils.Algorithms {
			if info.digests[algorithm], err = digests.Digest(algorithm); err != nil {
				return nil, fmt.Errorf("failed to checksum %s: %w", file, err)
			}
		}
		infos = append(infos, info)
	}

	return infos, nil
}
