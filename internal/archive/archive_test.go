package archive

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/amplopt/release-publisher/internal/manifest"
)

// writeTree creates the provided files (relative path -> contents) under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

// archiveContents reads back a zip archive as a name -> contents map.
func archiveContents(t *testing.T, path string) map[string]string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer func() {
		_ = reader.Close()
	}()

	contents := make(map[string]string, len(reader.File))

	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		contents[file.Name] = string(data)
	}

	return contents
}

// TestPlanNamesAndDateFallback checks archive naming, the date fallback for
// unknown components and exclusion of the manifest file.
func TestPlanNamesAndDateFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.bin":    "aaa",
		"b.bin":    "bbb",
		"versions": "a 1.2\n",
	})

	planner := &Planner{
		StagingDir:       dir,
		ManifestFilename: "versions",
		Versions:         manifest.Versions{"a": "1.2"},
		Platform:         "linux64",
		Date:             "20260827",
	}

	packages, staged, err := planner.Plan()
	require.NoError(t, err)

	names := make([]string, 0, len(packages))
	for _, pkg := range packages {
		names = append(names, pkg.ArchiveName)
	}

	sort.Strings(names)
	require.Equal(t, []string{"a-1.2-linux64.zip", "b-20260827-linux64.zip"}, names)

	sort.Strings(staged)
	require.Equal(t, []string{"a.bin", "b.bin", "versions"}, staged)
}

// TestPlanExtras ensures companion files never produce standalone archives
// and appear inside their owner's archive under their bare names.
func TestPlanExtras(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"jacop.exe":       "solver",
		"ampljacop.jar":   "bridge",
		"JaCoP-4.0.0.jar": "lib",
		"gecode":          "other",
	})

	planner := &Planner{
		StagingDir: dir,
		Versions:   manifest.Versions{"jacop": "4.0.0-20140107", "gecode": "4.2.1"},
		Extras: map[string][]string{
			"jacop": {"ampljacop.jar", "JaCoP-4.0.0.jar"},
		},
		Platform: "win64",
		Date:     "20260827",
	}

	packages, _, err := planner.Plan()
	require.NoError(t, err)
	require.Len(t, packages, 2)

	byComponent := make(map[string]Package, len(packages))
	for _, pkg := range packages {
		byComponent[pkg.Component] = pkg
	}

	jacop, ok := byComponent["jacop"]
	require.True(t, ok)
	require.Equal(t, "jacop-4.0.0-20140107-win64.zip", jacop.ArchiveName)

	archivePath := filepath.Join(t.TempDir(), jacop.ArchiveName)
	require.NoError(t, Write(archivePath, jacop.Entries))

	contents := archiveContents(t, archivePath)
	require.Equal(t, map[string]string{
		"jacop.exe":       "solver",
		"ampljacop.jar":   "bridge",
		"JaCoP-4.0.0.jar": "lib",
	}, contents)
}

// TestWritePreservesRelativePaths checks nested staged files keep their paths
// inside the archive.
func TestWritePreservesRelativePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"tables/ampltabl.dll": "handler",
	})

	planner := &Planner{
		StagingDir: dir,
		Platform:   "win32",
		Date:       "20260827",
	}

	packages, _, err := planner.Plan()
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "ampltabl-20260827-win32.zip", packages[0].ArchiveName)

	archivePath := filepath.Join(t.TempDir(), packages[0].ArchiveName)
	require.NoError(t, Write(archivePath, packages[0].Entries))

	contents := archiveContents(t, archivePath)
	require.Equal(t, map[string]string{"tables/ampltabl.dll": "handler"}, contents)
}

// TestWriteCombined checks the all-in-one archive contains every staged file
// plus the license and nothing else.
func TestWriteCombined(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.bin":    "aaa",
		"b.bin":    "bbb",
		"versions": "a 1.2\n",
	})

	licensePath := filepath.Join(t.TempDir(), "LICENSE")
	require.NoError(t, os.WriteFile(licensePath, []byte("EPL"), 0o600))

	archivePath := filepath.Join(t.TempDir(), CombinedName("ampl-open", "20260827", "linux64"))
	require.Equal(t, "ampl-open-20260827-linux64.zip", filepath.Base(archivePath))

	require.NoError(t, WriteCombined(archivePath, dir, []string{"a.bin", "b.bin", "versions"}, licensePath))

	contents := archiveContents(t, archivePath)
	require.Equal(t, map[string]string{
		"a.bin":    "aaa",
		"b.bin":    "bbb",
		"versions": "a 1.2\n",
		"LICENSE":  "EPL",
	}, contents)
}

// TestWriteMissingExtra ensures a declared but absent companion file fails
// archive creation.
func TestWriteMissingExtra(t *testing.T) {
	t.Parallel()

	err := Write(filepath.Join(t.TempDir(), "x.zip"), []Entry{
		{SourcePath: filepath.Join(t.TempDir(), "absent.jar"), Name: "absent.jar"},
	})
	require.Error(t, err)
}
