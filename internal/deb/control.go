package deb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrUnknownControlLine reports a line in a control block that is neither a
// field, a continuation, nor a known informational banner. Malformed control
// metadata is fatal: indexing it would corrupt the repository.
var ErrUnknownControlLine = errors.New("unrecognized line in control metadata")

var fieldLine = regexp.MustCompile(`^([!-9;-~]+):\s?(.*)$`)

// Informational banner lines emitted by dpkg-deb --info around the control
// paragraph. They carry no metadata and are skipped.
var bannerLines = []*regexp.Regexp{
	regexp.MustCompile(`^ ?new Debian package, version`),
	regexp.MustCompile(`^ ?size \d+ bytes: control archive`),
	regexp.MustCompile(`^\s*\d+ bytes,\s+\d+ lines\b`),
}

func isBannerLine(line string) bool {
	for _, re := range bannerLines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// ParseControl parses one control paragraph. A line matching "Field: value"
// starts a field; a line indented by one space continues the current field,
// joined with an embedded newline and de-indented by that one space. A blank
// line ends the paragraph. Anything else aborts with ErrUnknownControlLine.
func ParseControl(data []byte) (map[string]string, error) {
	fields := make(map[string]string)
	current := ""

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(fields) > 0 {
				break
			}
			continue
		}

		if m := fieldLine.FindStringSubmatch(line); m != nil {
			current = m[1]
			fields[current] = m[2]
			continue
		}

		if line[0] == ' ' && current != "" {
			fields[current] += "\n" + line[1:]
			continue
		}

		if isBannerLine(line) {
			continue
		}

		return nil, fmt.Errorf("%w: %q", ErrUnknownControlLine, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return fields, nil
}

// WriteControlField emits one "Key: value" field, re-indenting embedded
// newlines with a single leading space. Empty values must be filtered by the
// caller; a field is omitted entirely rather than emitted empty.
func WriteControlField(w io.Writer, key, value string) error {
	_, err := fmt.Fprintf(w, "%s: %s\n", key, strings.ReplaceAll(value, "\n", "\n "))
	return err
}
