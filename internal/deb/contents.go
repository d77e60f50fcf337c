package deb

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseListing extracts installed file paths from a tar-verbose content
// listing (permissions, owner, size, date, time, path). Directory entries are
// excluded. Symlink entries keep the link's own path; the arrow target is
// dropped. Lines that do not parse are skipped, not fatal: a malformed listing
// line only loses one file from the Contents index, while malformed control
// metadata would corrupt the package index and therefore aborts.
func ParseListing(data []byte) []string {
	var paths []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			logrus.Debugf("Skipping malformed content listing line: %q", line)
			continue
		}

		path := fields[5]
		path = strings.TrimPrefix(path, "./")
		if path == "" || strings.HasSuffix(path, "/") {
			continue
		}

		paths = append(paths, path)
	}

	return paths
}
