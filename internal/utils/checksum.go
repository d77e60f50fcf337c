package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest algorithm names as they appear in repository metadata.
const (
	MD5    = "MD5Sum"
	SHA1   = "SHA1"
	SHA256 = "SHA256"
	SHA512 = "SHA512"
)

// Algorithms lists the supported digest algorithms in manifest emission order.
var Algorithms = []string{MD5, SHA1, SHA256, SHA512}

// FileDigests computes content digests for a single file. All four digests are
// computed in one streaming pass on first use and memoized for the lifetime of
// the value, so repeated queries never re-read the file.
type FileDigests struct {
	path    string
	size    int64
	digests map[string]string
}

// NewFileDigests creates a digest provider bound to path.
func NewFileDigests(path string) *FileDigests {
	return &FileDigests{path: path}
}

// Digest returns the hex digest of the file for the given algorithm.
func (d *FileDigests) Digest(algorithm string) (string, error) {
	if err := d.compute(); err != nil {
		return "", err
	}
	hexsum, ok := d.digests[algorithm]
	if !ok {
		return "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}
	return hexsum, nil
}

// Size returns the file size in bytes.
func (d *FileDigests) Size() (int64, error) {
	if err := d.compute(); err != nil {
		return 0, err
	}
	return d.size, nil
}

func (d *FileDigests) compute() error {
	if d.digests != nil {
		return nil
	}

	f, err := os.Open(d.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sha256Hash := sha256.New()
	sha512Hash := sha512.New()

	// Stream the file through all hashes at once
	if _, err := io.Copy(io.MultiWriter(md5Hash, sha1Hash, sha256Hash, sha512Hash), f); err != nil {
		return fmt.Errorf("hashing %s: %w", d.path, err)
	}

	d.size = info.Size()
	d.digests = map[string]string{
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1Hash.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		SHA512: hex.EncodeToString(sha512Hash.Sum(nil)),
	}
	return nil
}
