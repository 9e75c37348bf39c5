package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amplopt/release-publisher/internal/archive"
	"github.com/amplopt/release-publisher/internal/config"
	"github.com/amplopt/release-publisher/internal/credentials"
	"github.com/amplopt/release-publisher/internal/logger"
	"github.com/amplopt/release-publisher/internal/manifest"
	"github.com/amplopt/release-publisher/internal/staging"
	"github.com/amplopt/release-publisher/internal/upload"
	"github.com/amplopt/release-publisher/internal/wiki"
)

var (
	// errSummaryNotFound is returned when a packaged component has no entry
	// in the summary table. Uploads require a summary, so this aborts the run.
	errSummaryNotFound = errors.New("no summary for component")
	// errLabelNotFound is returned when a platform has no OS label.
	errLabelNotFound = errors.New("no label for platform")
)

// versionPlaceholder in an extra-file name expands to the owning component's
// base version (revision stripped).
const versionPlaceholder = "{version}"

// publisher holds the state of one pipeline run.
// It is unexported—callers should use Run, which encapsulates setup.
type publisher struct {
	// cfg carries the pipeline settings.
	cfg *config.Config
	// stager rebuilds the staging directory per platform.
	stager *staging.Manager
	// uploader posts archives to the release store.
	uploader *upload.Client
	// results collects per-archive upload outcomes for end-of-run reporting.
	results upload.Results
	// versions is the mapping of the most recently processed platform. The
	// wiki update deliberately reuses it after the loop, matching the
	// historical behavior.
	versions manifest.Versions
}

// newPublisher loads settings and credentials and writes a run marker to
// avoid concurrent executions.
func newPublisher(ctx context.Context, configPath string) (*publisher, error) {
	if IsPublisherRunningNow(ctx) {
		return nil, errPublisherRunning
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	creds, err := credentials.Lookup(cfg.CredentialsFile, cfg.CredentialsHost)
	if err != nil {
		return nil, err
	}

	runMarker, err := os.Create(MarkerFilename)
	if err != nil {
		return nil, fmt.Errorf("create run marker: %w", err)
	}

	if err = runMarker.Close(); err != nil {
		return nil, fmt.Errorf("close run marker: %w", err)
	}

	return &publisher{
		cfg:      cfg,
		stager:   staging.NewManager(cfg.BuildServerHost, cfg.BuildServerPath, cfg.StagingDir),
		uploader: upload.NewClient(cfg.UploadURL, cfg.Project, creds),
		versions: make(manifest.Versions),
	}, nil
}

// Run processes every platform in reverse order, reports the upload summary
// and finally rewrites the wiki redirect pages.
func (p *publisher) Run(ctx context.Context) error {
	// Platforms are processed back to front, matching the historical order.
	for i := len(p.cfg.Platforms) - 1; i >= 0; i-- {
		if err := p.processPlatform(ctx, p.cfg.Platforms[i]); err != nil {
			return err
		}
	}

	p.results.Report(ctx)

	return p.updateWiki(ctx)
}

// processPlatform rebuilds the staging directory for one platform, resolves
// versions, packages every artifact and uploads the archives.
func (p *publisher) processPlatform(ctx context.Context, platform string) error {
	ctx = logger.WithKV(ctx, "platform", platform)

	if err := p.stager.Clean(); err != nil {
		return err
	}

	if err := p.stager.Fetch(ctx, platform); err != nil {
		return err
	}

	versions, err := manifest.Load(filepath.Join(p.cfg.StagingDir, p.cfg.ManifestFilename))
	if err != nil {
		return err
	}

	p.versions = versions

	extras, err := expandExtras(p.cfg.ExtraFiles, versions)
	if err != nil {
		return err
	}

	planner := &archive.Planner{
		StagingDir:       p.cfg.StagingDir,
		ManifestFilename: p.cfg.ManifestFilename,
		Versions:         versions,
		Extras:           extras,
		Platform:         platform,
		Date:             time.Now().Format("20060102"),
	}

	packages, staged, err := planner.Plan()
	if err != nil {
		return err
	}

	label, ok := p.cfg.Labels[platform]
	if !ok {
		return fmt.Errorf("%s: %w", platform, errLabelNotFound)
	}

	for _, pkg := range packages {
		summary, ok := p.cfg.Summaries[pkg.Component]
		if !ok {
			return fmt.Errorf("%s: %w", pkg.Component, errSummaryNotFound)
		}

		if err := archive.Write(pkg.ArchiveName, pkg.Entries); err != nil {
			return err
		}

		p.uploadArchive(ctx, pkg.ArchiveName, summary, []string{label})
	}

	combinedName := archive.CombinedName(
		filepath.Base(p.cfg.StagingDir), planner.Date, platform)

	if err := archive.WriteCombined(combinedName, p.cfg.StagingDir, staged, p.cfg.LicenseFile); err != nil {
		return err
	}

	p.uploadArchive(ctx, combinedName, p.cfg.CombinedSummary, nil)

	return nil
}

// uploadArchive posts one archive, records the outcome and removes the local
// file. An upload failure is logged and the run continues—this is the only
// failure-tolerance point in the pipeline.
func (p *publisher) uploadArchive(ctx context.Context, archiveName, summary string, labels []string) {
	logger.Infof(ctx, "Uploading %s", archiveName)

	result := p.uploader.Upload(ctx, archiveName, summary, labels)
	if result.Failed() {
		logger.ErrorKV(ctx, "Upload error",
			"file", result.File, "reason", result.Reason, "status", result.Status, "error", result.Err)
	}

	if err := os.Remove(archiveName); err != nil {
		logger.WarnKV(ctx, "Unable to remove archive", "file", archiveName, "error", err)
	}

	p.results = append(p.results, result)
}

// updateWiki clones the documentation repository, rewrites the redirect pages
// using the versions of the last processed platform, and pushes the change.
func (p *publisher) updateWiki(ctx context.Context) error {
	updater := wiki.NewUpdater(p.cfg.WikiRepoURL, p.cfg.WikiDir, p.cfg.CommitMessage)

	if err := updater.Clone(ctx); err != nil {
		return err
	}

	for _, name := range p.cfg.RedirectPages {
		version, err := p.versions.Require(name)
		if err != nil {
			return err
		}

		if err := updater.UpdateRedirect(ctx, name, manifest.Revision(version)); err != nil {
			return err
		}
	}

	return updater.CommitAndPush(ctx)
}

// cleanup removes the run marker.
func (p *publisher) cleanup(ctx context.Context) {
	if err := os.Remove(MarkerFilename); err != nil {
		logger.WarnKV(ctx, "Unable to remove run marker", "error", err)
	}
}

// expandExtras resolves version placeholders in the declared companion files.
// A placeholder makes the owning component's version a mandatory lookup.
func expandExtras(declared map[string][]string, versions manifest.Versions) (map[string][]string, error) {
	extras := make(map[string][]string, len(declared))

	for component, files := range declared {
		expanded := make([]string, 0, len(files))

		for _, name := range files {
			if strings.Contains(name, versionPlaceholder) {
				version, err := versions.Require(component)
				if err != nil {
					return nil, err
				}

				name = strings.ReplaceAll(name, versionPlaceholder, manifest.BaseVersion(version))
			}

			expanded = append(expanded, name)
		}

		extras[component] = expanded
	}

	return extras, nil
}
