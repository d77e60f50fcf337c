package deb

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	ar "github.com/mkrautz/goar"
	"github.com/ulikunitz/xz"
)

// Extractor provides the raw control-metadata block and content listing of a
// package archive. Implementations may read the archive in-process or drive
// an external tool; the inspector parses both through the same contract.
type Extractor interface {
	// Control returns the control paragraph, possibly surrounded by the
	// extraction tool's informational banner lines.
	Control(ctx context.Context, path string) ([]byte, error)

	// Contents returns the tar-verbose content listing of the archive.
	Contents(ctx context.Context, path string) ([]byte, error)
}

// Debian packages are ar archives whose first member is debian-binary.
var debMagic = []byte("!<arch>\ndebian")

// NativeExtractor reads .deb archives in-process.
type NativeExtractor struct{}

// NewNativeExtractor creates an in-process archive extractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// Control extracts the control file from the archive's control.tar member.
func (e *NativeExtractor) Control(_ context.Context, path string) ([]byte, error) {
	var control []byte
	err := e.withMember(path, "control.tar", func(name string, tr *tar.Reader) error {
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return fmt.Errorf("control file not found in %s", name)
			}
			if err != nil {
				return err
			}
			if hdr.Name == "./control" || hdr.Name == "control" {
				control, err = io.ReadAll(tr)
				return err
			}
		}
	})
	return control, err
}

// Contents renders the archive's data.tar member as a tar-verbose listing.
func (e *NativeExtractor) Contents(_ context.Context, path string) ([]byte, error) {
	var buf bytes.Buffer
	err := e.withMember(path, "data.tar", func(_ string, tr *tar.Reader) error {
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			writeListingLine(&buf, hdr)
		}
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// withMember locates the ar member with the given name prefix, wraps it in the
// right decompressor, and hands the tar stream to fn.
func (e *NativeExtractor) withMember(path, prefix string, fn func(name string, tr *tar.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	magic := make([]byte, len(debMagic))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, debMagic) {
		return fmt.Errorf("%s is not a Debian package archive", path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	library := ar.NewReader(f)
	for {
		header, err := library.Next()
		if err == io.EOF {
			return fmt.Errorf("unable to find %s.* member in %s", prefix, path)
		}
		if err != nil {
			return fmt.Errorf("unable to read ar archive %s: %w", path, err)
		}

		name := strings.TrimRight(strings.TrimSpace(header.Name), "/")
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		input, err := memberReader(library, name)
		if err != nil {
			return fmt.Errorf("unable to decompress %s from %s: %w", name, path, err)
		}
		return fn(name, tar.NewReader(input))
	}
}

func memberReader(r io.Reader, name string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(name, ".bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(name, ".xz"):
		return xz.NewReader(r)
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	default:
		return r, nil
	}
}

// writeListingLine renders one tar header in the permissions/owner/size/
// date/time/path form the listing parser consumes.
func writeListingLine(buf *bytes.Buffer, hdr *tar.Header) {
	name := hdr.Name
	if hdr.Typeflag == tar.TypeDir && !strings.HasSuffix(name, "/") {
		name += "/"
	}

	owner := hdr.Uname + "/" + hdr.Gname
	if hdr.Uname == "" && hdr.Gname == "" {
		owner = strconv.Itoa(hdr.Uid) + "/" + strconv.Itoa(hdr.Gid)
	}

	fmt.Fprintf(buf, "%s %s %9d %s %s",
		hdr.FileInfo().Mode().String(), owner, hdr.Size,
		hdr.ModTime.UTC().Format("2006-01-02 15:04"), name)
	if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
		fmt.Fprintf(buf, " -> %s", hdr.Linkname)
	}
	buf.WriteByte('\n')
}
