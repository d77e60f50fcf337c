package index

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ralt/aptgen/internal/models"
)

// GenerateContentsIndex renders the file-location index: a header line, then
// one line per distinct installed path, sorted lexicographically, mapping the
// path to the Section/Name of the providing package.
//
// When several packages ship the same path, the last one pushed wins. This is
// a documented limitation of the index, not a merge policy.
func GenerateContentsIndex(packages []*models.Package) []byte {
	locations := make(map[string]string)
	for _, pkg := range packages {
		for _, path := range pkg.Contents {
			locations[path] = pkg.Location()
		}
	}

	paths := make([]string, 0, len(locations))
	for path := range locations {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	buf.WriteString("FILE LOCATION\n")
	for _, path := range paths {
		fmt.Fprintf(&buf, "%s %s\n", path, locations[path])
	}

	return buf.Bytes()
}
