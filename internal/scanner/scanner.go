package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/aptgen/internal/models"
	"github.com/sirupsen/logrus"
)

// Scanner finds package archives under a repository's pool tree.
type Scanner interface {
	// Scan recursively walks dir and returns the paths of all archives found
	Scan(ctx context.Context, dir string) ([]string, error)
}

// FileSystemScanner implements Scanner over the local filesystem.
type FileSystemScanner struct {
	// Exclude names directories (relative to the walk root's parent) that are
	// never descended into. The repository's own dists output always belongs
	// here: it holds the very index files this pipeline produces.
	Exclude []string
}

// NewFileSystemScanner creates a scanner that skips the given absolute
// directory paths during traversal.
func NewFileSystemScanner(exclude ...string) *FileSystemScanner {
	return &FileSystemScanner{Exclude: exclude}
}

// Scan recursively walks dir collecting every file ending in ".deb". Walk
// order is whatever the filesystem enumerates; callers must not rely on it
// beyond logging. A directory that cannot be opened aborts the scan.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]string, error) {
	var archives []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Individual unreadable files stay invisible, matching
			// directory-listing semantics; unreadable directories are fatal.
			if info != nil && !info.IsDir() {
				logrus.Debugf("Skipping unreadable file %s: %v", path, err)
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			for _, ex := range s.Exclude {
				if path == ex {
					logrus.Debugf("Skipping excluded directory %s", path)
					return filepath.SkipDir
				}
			}
			return nil
		}

		if filepath.Ext(path) == ".deb" {
			logrus.Debugf("Found package archive: %s", path)
			archives = append(archives, path)
		}
		return nil
	})

	if err != nil {
		return nil, &models.RepoError{
			Type: models.ErrFilesystem,
			Path: dir,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	logrus.Infof("Found %d package archives in %s", len(archives), dir)
	return archives, nil
}
