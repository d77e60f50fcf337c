package generator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/ralt/aptgen/internal/deb"
	"github.com/ralt/aptgen/internal/deb/debtest"
	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
)

func testConfig(root string) *models.RepositoryConfig {
	return &models.RepositoryConfig{
		RootDir:    root,
		PoolDir:    "pool",
		Origin:     "Test",
		Label:      "Test",
		Codename:   "stable",
		Suite:      "stable",
		Components: []string{"main"},
	}
}

func control(name, version, arch, section string) string {
	return "Package: " + name + "\nVersion: " + version + "\nArchitecture: " + arch +
		"\nSection: " + section + "\nDescription: test package " + name + "\n"
}

func generate(t *testing.T, cfg *models.RepositoryConfig) {
	t.Helper()
	g := NewGenerator(deb.NewNativeExtractor(), nil)
	if err := g.Generate(context.Background(), cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func readDists(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root, "dists", "stable"}, parts...)...)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func gunzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to open gzip stream: %v", err)
	}
	data, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}
	return string(data)
}

func TestGenerateSingleArch(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	debtest.WriteDeb(t, filepath.Join(pool, "hello_1.0_amd64.deb"),
		control("hello", "1.0", "amd64", "utils"),
		[]debtest.Entry{{Name: "./usr/bin/hello", Body: "bin"}})

	generate(t, testConfig(root))

	packages := readDists(t, root, "main", "binary-amd64", "Packages")
	if !strings.HasPrefix(packages, "Package: hello\n") {
		t.Errorf("Packages must start with the package name:\n%s", packages)
	}
	if strings.Count(packages, "Package: ") != 1 {
		t.Errorf("expected exactly one paragraph:\n%s", packages)
	}
	if !strings.Contains(packages, "Filename: pool/hello_1.0_amd64.deb\n") {
		t.Errorf("Filename must be repository-relative:\n%s", packages)
	}

	if _, err := os.Stat(filepath.Join(root, "dists", "stable", "main", "binary-all")); !os.IsNotExist(err) {
		t.Error("binary-all directory must not exist")
	}
}

func TestGenerateFoldsArchAll(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	debtest.WriteDeb(t, filepath.Join(pool, "hello_1.0_amd64.deb"),
		control("hello", "1.0", "amd64", "utils"),
		[]debtest.Entry{{Name: "./usr/bin/hello", Body: "bin"}})
	debtest.WriteDeb(t, filepath.Join(pool, "common_1.0_all.deb"),
		control("common", "1.0", "all", "misc"),
		[]debtest.Entry{{Name: "./usr/share/common/data", Body: "data"}})

	generate(t, testConfig(root))

	packages := readDists(t, root, "main", "binary-amd64", "Packages")
	if !strings.Contains(packages, "Package: hello\n") || !strings.Contains(packages, "Package: common\n") {
		t.Errorf("both paragraphs must land in binary-amd64:\n%s", packages)
	}
}

func TestGenerateContentsLastWriteWins(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	// Scan order is filesystem-dependent, but within one run the Contents
	// index maps a shared path to the last record pushed; with lexicographic
	// readdir order that is the later-named archive.
	debtest.WriteDeb(t, filepath.Join(pool, "aaa_1.0_amd64.deb"),
		control("aaa", "1.0", "amd64", "utils"),
		[]debtest.Entry{{Name: "./usr/share/common/README", Body: "a"}})
	debtest.WriteDeb(t, filepath.Join(pool, "bbb_1.0_amd64.deb"),
		control("bbb", "1.0", "amd64", "web"),
		[]debtest.Entry{{Name: "./usr/share/common/README", Body: "b"}})

	generate(t, testConfig(root))

	gz := filepath.Join(root, "dists", "stable", "main", "Contents-amd64.gz")
	if _, err := os.Stat(gz); err != nil {
		t.Fatalf("Contents-amd64.gz missing: %v", err)
	}

	contents := gunzip(t, gz)
	if strings.Count(contents, "usr/share/common/README") != 1 {
		t.Errorf("shared path must appear once:\n%s", contents)
	}
	if !strings.Contains(contents, "usr/share/common/README utils/aaa") &&
		!strings.Contains(contents, "usr/share/common/README web/bbb") {
		t.Errorf("shared path must map to one providing package:\n%s", contents)
	}
}

func TestGenerateUnsignedRemovesStaleSignatures(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	debtest.WriteDeb(t, filepath.Join(pool, "hello_1.0_amd64.deb"),
		control("hello", "1.0", "amd64", "utils"),
		[]debtest.Entry{{Name: "./usr/bin/hello", Body: "bin"}})

	// Leftovers from a previously signed run
	distsDir := filepath.Join(root, "dists", "stable")
	if err := os.MkdirAll(distsDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, stale := range []string{"InRelease", "Release.gpg"} {
		if err := os.WriteFile(filepath.Join(distsDir, stale), []byte("stale"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	generate(t, testConfig(root))

	for _, stale := range []string{"InRelease", "Release.gpg"} {
		if _, err := os.Stat(filepath.Join(distsDir, stale)); !os.IsNotExist(err) {
			t.Errorf("%s must be removed on an unsigned run", stale)
		}
	}
	if _, err := os.Stat(filepath.Join(distsDir, "Release")); err != nil {
		t.Error("Release manifest missing")
	}
}

func TestGenerateManifestBindsIndexFiles(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	debtest.WriteDeb(t, filepath.Join(pool, "hello_1.0_amd64.deb"),
		control("hello", "1.0", "amd64", "utils"),
		[]debtest.Entry{{Name: "./usr/bin/hello", Body: "bin"}})

	generate(t, testConfig(root))

	manifest := readDists(t, root, "Release")
	for _, file := range []string{
		"main/binary-amd64/Packages",
		"main/binary-amd64/Packages.gz",
		"main/binary-amd64/Packages.bz2",
		"main/binary-amd64/Release",
		"main/Contents-amd64.gz",
	} {
		if !strings.Contains(manifest, " "+file+"\n") {
			t.Errorf("manifest missing entry for %s:\n%s", file, manifest)
		}

		// Recorded checksums match the bytes currently on disk
		digests := utils.NewFileDigests(filepath.Join(root, "dists", "stable", file))
		sha256sum, err := digests.Digest(utils.SHA256)
		if err != nil {
			t.Fatalf("Digest failed: %v", err)
		}
		if !strings.Contains(manifest, sha256sum) {
			t.Errorf("manifest SHA256 for %s is stale", file)
		}
	}
}

func TestGenerateMalformedPackageAborts(t *testing.T) {
	root := t.TempDir()
	pool := filepath.Join(root, "pool")
	if err := os.MkdirAll(pool, 0755); err != nil {
		t.Fatal(err)
	}
	debtest.WriteDeb(t, filepath.Join(pool, "bad_1.0_amd64.deb"),
		"Package: bad\nthis line is not a control field\n", nil)

	g := NewGenerator(deb.NewNativeExtractor(), nil)
	if err := g.Generate(context.Background(), testConfig(root)); err == nil {
		t.Fatal("Generate must abort on malformed control metadata")
	}

	if _, err := os.Stat(filepath.Join(root, "dists")); !os.IsNotExist(err) {
		t.Error("no index files may be written after an aborted run")
	}
}
