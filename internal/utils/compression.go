package utils

import (
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
)

// GzipFile writes a gzip-compressed copy of src next to it as src+".gz".
// Compression never alters content, only the container format.
func GzipFile(src string) error {
	return compressFile(src, src+".gz", func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	})
}

// Bzip2File writes a bzip2-compressed copy of src next to it as src+".bz2".
func Bzip2File(src string) error {
	return compressFile(src, src+".bz2", func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	})
}

func compressFile(src, dst string, wrap func(io.Writer) (io.WriteCloser, error)) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	cw, err := wrap(out)
	if err != nil {
		return err
	}

	if _, err := io.Copy(cw, in); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	return out.Sync()
}
