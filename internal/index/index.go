package index

import (
	"sort"

	"github.com/ralt/aptgen/internal/models"
)

// ArchAll marks architecture-independent packages. They are folded into every
// concrete architecture's index and never get an index of their own.
const ArchAll = "all"

// GroupByArchitecture buckets packages per concrete target architecture.
// Every package marked "all" appears in every bucket. The returned
// architecture list is sorted ascending so all downstream output is
// deterministic regardless of map iteration order.
func GroupByArchitecture(packages []*models.Package) ([]string, map[string][]*models.Package) {
	seen := make(map[string]bool)
	for _, pkg := range packages {
		seen[pkg.Architecture()] = true
	}

	var arches []string
	for arch := range seen {
		if arch != ArchAll {
			arches = append(arches, arch)
		}
	}
	sort.Strings(arches)

	grouped := make(map[string][]*models.Package, len(arches))
	for _, arch := range arches {
		for _, pkg := range packages {
			if pkg.Architecture() == arch || pkg.Architecture() == ArchAll {
				grouped[arch] = append(grouped[arch], pkg)
			}
		}
	}

	return arches, grouped
}
