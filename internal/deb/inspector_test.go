package deb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ralt/aptgen/internal/deb/debtest"
	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/utils"
)

const helloControl = `Package: hello
Version: 1.0-1
Architecture: amd64
Maintainer: Test <test@example.com>
Section: utils
Description: test package
 extended description
`

func writeHelloDeb(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "hello_1.0-1_amd64.deb")
	debtest.WriteDeb(t, path, helloControl, []debtest.Entry{
		{Name: "./usr/", Dir: true},
		{Name: "./usr/bin/", Dir: true},
		{Name: "./usr/bin/hello", Body: "#!/bin/sh\necho hello\n"},
		{Name: "./usr/bin/hi", Link: "hello"},
	})
	return path
}

func TestInspect(t *testing.T) {
	path := writeHelloDeb(t, t.TempDir())

	pkg, err := Inspect(context.Background(), NewNativeExtractor(), path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if pkg.Name() != "hello" || pkg.Version() != "1.0-1" || pkg.Architecture() != "amd64" {
		t.Errorf("unexpected identity fields: %v", pkg.Fields)
	}
	if pkg.Fields["Description"] != "test package\nextended description" {
		t.Errorf("Description = %q", pkg.Fields["Description"])
	}

	wantContents := []string{"usr/bin/hello", "usr/bin/hi"}
	if !reflect.DeepEqual(pkg.Contents, wantContents) {
		t.Errorf("Contents = %v, want %v", pkg.Contents, wantContents)
	}

	// Size and all four checksums must be populated and match the file
	digests := utils.NewFileDigests(path)
	size, _ := digests.Size()
	if pkg.Size != size || pkg.Size == 0 {
		t.Errorf("Size = %d, want %d", pkg.Size, size)
	}
	for algorithm, got := range map[string]string{
		utils.MD5:    pkg.MD5Sum,
		utils.SHA1:   pkg.SHA1Sum,
		utils.SHA256: pkg.SHA256Sum,
		utils.SHA512: pkg.SHA512Sum,
	} {
		want, err := digests.Digest(algorithm)
		if err != nil {
			t.Fatalf("Digest(%s) failed: %v", algorithm, err)
		}
		if got != want {
			t.Errorf("%s = %s, want %s", algorithm, got, want)
		}
	}

	if pkg.Location() != "utils/hello" {
		t.Errorf("Location = %q, want utils/hello", pkg.Location())
	}
}

func TestInspectMalformedControl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad_1.0_amd64.deb")
	debtest.WriteDeb(t, path, "Package: bad\nnot a control line\n", nil)

	_, err := Inspect(context.Background(), NewNativeExtractor(), path)
	if err == nil {
		t.Fatal("Inspect should fail on malformed control metadata")
	}

	var repoErr *models.RepoError
	if !errors.As(err, &repoErr) || repoErr.Type != models.ErrUnknownMetadata {
		t.Errorf("expected ErrUnknownMetadata, got %v", err)
	}
}

func TestInspectNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.deb")
	if err := os.WriteFile(path, []byte("not an ar archive"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := Inspect(context.Background(), NewNativeExtractor(), path); err == nil {
		t.Error("Inspect should fail on a non-archive file")
	}
}

func TestInspectMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.deb")

	_, err := Inspect(context.Background(), NewNativeExtractor(), path)
	if err == nil {
		t.Fatal("Inspect should fail on a missing file")
	}

	var repoErr *models.RepoError
	if !errors.As(err, &repoErr) || repoErr.Type != models.ErrFilesystem {
		t.Errorf("expected ErrFilesystem, got %v", err)
	}
}
