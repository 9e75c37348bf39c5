package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParse covers the manifest grammar: plain entries, driver revisions,
// lowercasing of names and skipping of short lines.
func TestParse(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Gecode 4.2.1 driver(20140303)",
		"JaCoP 4.0.0-20140107",
		"ampltabl 20131212",
		"broken",
		"",
		"CBC 2.8.8",
	}, "\n")

	versions, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, Versions{
		"gecode":   "4.2.1-20140303",
		"jacop":    "4.0.0-20140107",
		"ampltabl": "20131212",
		"cbc":      "2.8.8",
	}, versions)
}

// TestLoad checks reading from disk and tolerance of a missing manifest.
func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "versions")
	require.NoError(t, os.WriteFile(path, []byte("gecode 4.2.1 driver(7)\n"), 0o600))

	versions, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "4.2.1-7", versions["gecode"])

	versions, err = Load(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	require.Empty(t, versions)
}

// TestRequire ensures mandatory lookups fail loudly for missing components.
func TestRequire(t *testing.T) {
	t.Parallel()

	versions := Versions{"jacop": "4.0.0-20140107"}

	got, err := versions.Require("jacop")
	require.NoError(t, err)
	require.Equal(t, "4.0.0-20140107", got)

	_, err = versions.Require("gecode")
	require.ErrorIs(t, err, ErrVersionNotFound)
}

// TestVersionSplitting checks the base/revision helpers around the last hyphen.
func TestVersionSplitting(t *testing.T) {
	t.Parallel()

	require.Equal(t, "4.0.0", BaseVersion("4.0.0-20140107"))
	require.Equal(t, "4.2.1-1", BaseVersion("4.2.1-1-20140303"))
	require.Equal(t, "20131212", BaseVersion("20131212"))

	require.Equal(t, "20140107", Revision("4.0.0-20140107"))
	require.Equal(t, "20131212", Revision("20131212"))
}
