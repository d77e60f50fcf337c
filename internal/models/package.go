package models

// Package represents one scanned archive: its control fields, the files it
// installs, and the file-level facts derived from the archive itself.
type Package struct {
	// Filename holds the absolute archive path during scanning; the pipeline
	// rewrites it to a repository-root-relative path before indexing.
	Filename string
	Size     int64

	MD5Sum    string
	SHA1Sum   string
	SHA256Sum string
	SHA512Sum string

	// Fields is the control paragraph, keyed by field name. Keys are
	// case-sensitive; values may contain embedded newlines for multi-line
	// fields. Populated once by the inspector and not mutated afterwards.
	Fields map[string]string

	// Contents lists the regular files the archive installs, in archive order.
	Contents []string
}

// Name returns the package name from the control paragraph.
func (p *Package) Name() string {
	return p.Fields["Package"]
}

// Version returns the package version from the control paragraph.
func (p *Package) Version() string {
	return p.Fields["Version"]
}

// Architecture returns the target architecture; the sentinel "all" marks an
// architecture-independent package.
func (p *Package) Architecture() string {
	return p.Fields["Architecture"]
}

// Location returns the Section/Name qualifier used by the Contents index.
func (p *Package) Location() string {
	return p.Fields["Section"] + "/" + p.Name()
}
