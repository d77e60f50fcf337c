package index

import (
	"strings"
	"testing"

	"github.com/ralt/aptgen/internal/models"
)

func TestGeneratePackagesIndexCanonicalOrder(t *testing.T) {
	pkg := testPackage("hello", "1.0", "amd64")
	pkg.Fields["Description"] = "test package\nextended line"
	pkg.Fields["Maintainer"] = "Test <test@example.com>"
	pkg.Fields["Homepage"] = "https://example.com"
	pkg.Fields["X-Custom"] = "zeta"
	pkg.Fields["Build-Ids"] = "abc"

	data, err := GeneratePackagesIndex([]*models.Package{pkg})
	if err != nil {
		t.Fatalf("GeneratePackagesIndex failed: %v", err)
	}

	text := string(data)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	wantOrder := []string{
		"Package: hello",
		"Section: utils",
		"Maintainer: Test <test@example.com>",
		"Architecture: amd64",
		"Version: 1.0",
		"Filename: pool/hello_1.0_amd64.deb",
		"Size: 100",
	}
	idx := 0
	for _, line := range lines {
		if idx < len(wantOrder) && line == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Errorf("canonical fields out of order in:\n%s", text)
	}

	if !strings.Contains(text, "MD5sum: 000") {
		t.Error("MD5sum field missing")
	}
	if strings.Index(text, "Description:") > strings.Index(text, "Homepage:") {
		t.Error("Description must precede Homepage")
	}
	if strings.Index(text, "Build-Ids: abc") > strings.Index(text, "X-Custom: zeta") {
		t.Error("extra fields must be sorted")
	}
	if strings.Index(text, "Homepage:") > strings.Index(text, "Build-Ids:") {
		t.Error("extra fields must come after canonical fields")
	}
	if !strings.Contains(text, "Description: test package\n extended line\n") {
		t.Error("multi-line value must be re-indented with one space")
	}
}

func TestGeneratePackagesIndexOmitsEmptyFields(t *testing.T) {
	pkg := testPackage("hello", "1.0", "amd64")
	pkg.Fields["Depends"] = ""

	data, err := GeneratePackagesIndex([]*models.Package{pkg})
	if err != nil {
		t.Fatalf("GeneratePackagesIndex failed: %v", err)
	}
	if strings.Contains(string(data), "Depends:") {
		t.Error("empty fields must be omitted, not emitted empty")
	}
}

func TestGeneratePackagesIndexSortedByName(t *testing.T) {
	data, err := GeneratePackagesIndex([]*models.Package{
		testPackage("zsh", "5.9", "amd64"),
		testPackage("bash", "5.2", "amd64"),
	})
	if err != nil {
		t.Fatalf("GeneratePackagesIndex failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "Package: bash\n") {
		t.Errorf("expected bash paragraph first:\n%s", data)
	}
}

func TestGeneratePackagesIndexParagraphSeparation(t *testing.T) {
	data, err := GeneratePackagesIndex([]*models.Package{
		testPackage("alpha", "1.0", "amd64"),
		testPackage("beta", "2.0", "amd64"),
	})
	if err != nil {
		t.Fatalf("GeneratePackagesIndex failed: %v", err)
	}

	paragraphs := strings.Split(strings.TrimRight(string(data), "\n"), "\n\n")
	if len(paragraphs) != 2 {
		t.Errorf("expected 2 paragraphs, got %d:\n%s", len(paragraphs), data)
	}
}
