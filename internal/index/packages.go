package index

import (
	"bytes"
	"io"
	"sort"
	"strconv"

	"github.com/ralt/aptgen/internal/deb"
	"github.com/ralt/aptgen/internal/models"
)

// Canonical field order for Packages index paragraphs; the tail of each
// paragraph carries any remaining control fields in sorted order.
var canonicalOrder = []string{
	"Package",
	"Priority",
	"Section",
	"Installed-Size",
	"Maintainer",
	"Architecture",
	"Source",
	"Version",
	"Provides",
	"Depends",
	"Breaks",
	"Recommends",
	"Suggests",
	"Filename",
	"Size",
	"MD5sum",
	"SHA1",
	"SHA256",
	"SHA512",
	"Description",
	"Homepage",
}

// GeneratePackagesIndex renders the package index: one paragraph per package,
// sorted by name then version, canonical fields first, remaining fields
// sorted, paragraphs separated by a blank line. Fields with empty values are
// omitted entirely.
func GeneratePackagesIndex(packages []*models.Package) ([]byte, error) {
	sorted := append([]*models.Package(nil), packages...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name() != sorted[j].Name() {
			return sorted[i].Name() < sorted[j].Name()
		}
		return sorted[i].Version() < sorted[j].Version()
	})

	var buf bytes.Buffer

	for _, pkg := range sorted {
		if err := writeParagraph(&buf, pkg); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func writeParagraph(w io.Writer, pkg *models.Package) error {
	derived := derivedFields(pkg)

	emitted := make(map[string]bool, len(canonicalOrder))
	for _, key := range canonicalOrder {
		emitted[key] = true

		value, ok := derived[key]
		if !ok {
			value = pkg.Fields[key]
		}
		if value == "" {
			continue
		}
		if err := deb.WriteControlField(w, key, value); err != nil {
			return err
		}
	}

	for _, key := range sortedKeys(pkg.Fields) {
		if emitted[key] || pkg.Fields[key] == "" {
			continue
		}
		if err := deb.WriteControlField(w, key, pkg.Fields[key]); err != nil {
			return err
		}
	}

	return nil
}

// derivedFields carries the values computed at inspection time rather than
// parsed from the control paragraph. They shadow any control field of the
// same name.
func derivedFields(pkg *models.Package) map[string]string {
	return map[string]string{
		"Filename": pkg.Filename,
		"Size":     strconv.FormatInt(pkg.Size, 10),
		"MD5sum":   pkg.MD5Sum,
		"SHA1":     pkg.SHA1Sum,
		"SHA256":   pkg.SHA256Sum,
		"SHA512":   pkg.SHA512Sum,
	}
}

func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
