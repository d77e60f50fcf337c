package deb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// DpkgExtractor drives the dpkg tools as subprocesses. It produces the same
// text blocks as the native extractor, with dpkg's informational banner lines
// left in place for the parser to skip.
type DpkgExtractor struct{}

// NewDpkgExtractor creates an extractor backed by dpkg-deb and dpkg.
func NewDpkgExtractor() *DpkgExtractor {
	return &DpkgExtractor{}
}

// Control runs dpkg-deb --info on the archive. dpkg-deb indents its whole
// control area by one space; that indent is stripped so field lines arrive
// unindented and continuation lines keep exactly one leading space.
func (e *DpkgExtractor) Control(ctx context.Context, path string) ([]byte, error) {
	out, err := runTool(ctx, "dpkg-deb", "-I", path)
	if err != nil {
		return nil, err
	}
	return stripColumn(out), nil
}

// Contents runs dpkg -c on the archive.
func (e *DpkgExtractor) Contents(ctx context.Context, path string) ([]byte, error) {
	return runTool(ctx, "dpkg", "-c", path)
}

func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %v: %w (%s)", name, args, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// stripColumn removes one leading space from every line that has one.
func stripColumn(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		if len(line) > 0 && line[0] == ' ' {
			lines[i] = line[1:]
		}
	}
	return bytes.Join(lines, []byte("\n"))
}
