package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Versions maps a lowercase component name to its resolved version string.
type Versions map[string]string

// driverPattern matches a driver revision marker anywhere on a manifest line.
// Grammar of a manifest line:
//
//	line    = name SP version *(SP extra)
//	name    = 1*VCHAR            ; lowercased before use as key
//	version = 1*VCHAR
//	extra   = any text, optionally containing "driver(" 1*DIGIT ")"
//
// When the driver marker is present, "-<digits>" is appended to the version.
// Lines with fewer than two fields are skipped.
var driverPattern = regexp.MustCompile(`driver\(([0-9]+)\)`)

// ErrVersionNotFound is returned by Require when a component has no entry.
var ErrVersionNotFound = errors.New("version not found")

// Parse reads a version manifest and returns the component/version mapping.
func Parse(r io.Reader) (Versions, error) {
	versions := make(Versions)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		version := fields[1]
		if m := driverPattern.FindStringSubmatch(line); m != nil {
			version += "-" + m[1]
		}

		versions[strings.ToLower(fields[0])] = version
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return versions, nil
}

// Load parses the manifest at the provided path. A missing file is tolerated
// and yields an empty mapping.
func Load(path string) (Versions, error) {
	file, err := os.Open(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return make(Versions), nil
	} else if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	// Best-effort close, the file is read-only.
	defer func() {
		_ = file.Close()
	}()

	return Parse(file)
}

// Require returns the version of a component whose presence is mandatory.
func (v Versions) Require(component string) (string, error) {
	version, ok := v[component]
	if !ok {
		return "", fmt.Errorf("%s: %w", component, ErrVersionNotFound)
	}

	return version, nil
}

// BaseVersion strips the trailing revision from a version string: everything
// from the last hyphen on is removed. A version without a hyphen is returned
// unchanged.
func BaseVersion(version string) string {
	if i := strings.LastIndexByte(version, '-'); i >= 0 {
		return version[:i]
	}

	return version
}

// Revision returns the token after the last hyphen of a version string. A
// version without a hyphen is returned whole.
func Revision(version string) string {
	if i := strings.LastIndexByte(version, '-'); i >= 0 {
		return version[i+1:]
	}

	return version
}
