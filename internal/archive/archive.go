package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/amplopt/release-publisher/internal/manifest"
)

// Entry is a single file stored in an archive.
type Entry struct {
	// SourcePath is the file location on disk.
	SourcePath string
	// Name is the path of the file inside the archive.
	Name string
}

// Package describes one per-component release archive.
type Package struct {
	// Component is the staged file's base name without extension.
	Component string
	// Version is the resolved version, or the current date when the
	// component has no manifest entry.
	Version string
	// ArchiveName is <component>-<version>-<platform>.zip.
	ArchiveName string
	// Entries lists the component file plus any declared companion files.
	Entries []Entry
}

// Planner derives the set of per-component archives from a staging tree.
type Planner struct {
	// StagingDir is the root of the staged artifact tree.
	StagingDir string
	// ManifestFilename is excluded from packaging.
	ManifestFilename string
	// Versions resolves component versions.
	Versions manifest.Versions
	// Extras maps a component to companion file names bundled into its
	// archive. Companion files never produce standalone archives.
	Extras map[string][]string
	// Platform tags the archive names.
	Platform string
	// Date is the YYYYMMDD fallback version for unknown components.
	Date string
}

// Plan walks the staging tree and returns the archives to produce plus the
// relative paths of every staged regular file (the combined archive's
// contents). Directory walking is lexical, so the result is deterministic.
func (p *Planner) Plan() ([]Package, []string, error) {
	owners := make(map[string]string, len(p.Extras))
	for component, files := range p.Extras {
		for _, name := range files {
			owners[name] = component
		}
	}

	var (
		packages []Package
		staged   []string
	)

	err := filepath.WalkDir(p.StagingDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(p.StagingDir, filePath)
		if err != nil {
			return fmt.Errorf("relative path for %q: %w", filePath, err)
		}

		name := filepath.ToSlash(rel)
		staged = append(staged, name)

		// The manifest and companion files are bundled, never packaged
		// standalone.
		if name == p.ManifestFilename {
			return nil
		}

		if _, isExtra := owners[name]; isExtra {
			return nil
		}

		component := strings.TrimSuffix(path.Base(name), path.Ext(name))

		version, ok := p.Versions[component]
		if !ok {
			version = p.Date
		}

		pkg := Package{
			Component:   component,
			Version:     version,
			ArchiveName: fmt.Sprintf("%s-%s-%s.zip", component, version, p.Platform),
			Entries:     []Entry{{SourcePath: filePath, Name: name}},
		}

		// Companion files live next to their owner and are stored under
		// their bare names. A component without declared extras skips this.
		for _, extra := range p.Extras[component] {
			pkg.Entries = append(pkg.Entries, Entry{
				SourcePath: filepath.Join(filepath.Dir(filePath), extra),
				Name:       extra,
			})
		}

		packages = append(packages, pkg)

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk staging dir: %w", err)
	}

	return packages, staged, nil
}

// CombinedName builds the all-in-one archive name for a platform.
func CombinedName(prefix, date, platform string) string {
	return fmt.Sprintf("%s-%s-%s.zip", prefix, date, platform)
}

// Write produces a zip archive at archivePath containing the provided entries.
func Write(archivePath string, entries []Entry) (err error) {
	file, err := os.Create(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
	}()

	writer := zip.NewWriter(file)

	for _, entry := range entries {
		if err := addEntry(writer, entry); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	return nil
}

// WriteCombined produces the all-in-one archive: every staged file by its
// relative path plus the license file, and nothing else.
func WriteCombined(archivePath, stagingDir string, staged []string, licensePath string) error {
	entries := make([]Entry, 0, len(staged)+1)
	for _, name := range staged {
		entries = append(entries, Entry{
			SourcePath: filepath.Join(stagingDir, filepath.FromSlash(name)),
			Name:       name,
		})
	}

	entries = append(entries, Entry{
		SourcePath: licensePath,
		Name:       filepath.Base(licensePath),
	})

	return Write(archivePath, entries)
}

// addEntry deflates one file into the archive under its entry name.
func addEntry(writer *zip.Writer, entry Entry) error {
	source, err := os.Open(filepath.Clean(entry.SourcePath))
	if err != nil {
		return fmt.Errorf("open %q: %w", entry.SourcePath, err)
	}

	// Best-effort close, the file is read-only.
	defer func() {
		_ = source.Close()
	}()

	target, err := writer.CreateHeader(&zip.FileHeader{
		Name:   entry.Name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("create entry %q: %w", entry.Name, err)
	}

	if _, err := io.Copy(target, source); err != nil {
		return fmt.Errorf("write entry %q: %w", entry.Name, err)
	}

	return nil
}
