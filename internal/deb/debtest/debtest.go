// Package debtest builds minimal Debian archives for tests.
package debtest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Entry is one member of the data archive.
type Entry struct {
	Name string
	Body string
	Link string // symlink target; Body is ignored when set
	Dir  bool
}

// WriteDeb writes a .deb archive at path containing the given control
// paragraph and data entries.
func WriteDeb(t *testing.T, path, control string, entries []Entry) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("!<arch>\n")
	writeArMember(&buf, "debian-binary", []byte("2.0\n"))
	writeArMember(&buf, "control.tar.gz", tarGz(t, []Entry{{Name: "./control", Body: control}}))
	writeArMember(&buf, "data.tar.gz", tarGz(t, entries))

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write deb archive: %v", err)
	}
}

func writeArMember(buf *bytes.Buffer, name string, data []byte) {
	fmt.Fprintf(buf, "%-16s%-12d%-6d%-6d%-8s%-10d`\n", name, 0, 0, 0, "100644", len(data))
	buf.Write(data)
	if len(data)%2 != 0 {
		buf.WriteByte('\n')
	}
}

func tarGz(t *testing.T, entries []Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, entry := range entries {
		hdr := &tar.Header{
			Name:    entry.Name,
			Mode:    0644,
			Uname:   "root",
			Gname:   "root",
			ModTime: time.Unix(0, 0),
		}
		switch {
		case entry.Dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		case entry.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = entry.Link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(entry.Body))
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("Failed to write tar body: %v", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}
