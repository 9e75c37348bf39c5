package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every knob of the release pipeline. Each field falls back to
// the built-in default when left empty, so an absent config file reproduces
// the historical fixed constants.
type Config struct {
	// BuildServerHost is the machine holding per-platform build artifacts.
	BuildServerHost string `yaml:"build_server_host"`
	// BuildServerPath is the directory on the build server containing one
	// subdirectory per platform.
	BuildServerPath string `yaml:"build_server_path"`
	// Project is the release-store project the archives are uploaded to.
	Project string `yaml:"project"`
	// StagingDir is the local directory rebuilt from the build server for
	// each platform.
	StagingDir string `yaml:"staging_dir"`
	// ManifestFilename is the name of the version manifest inside the
	// staging directory.
	ManifestFilename string `yaml:"manifest_file"`
	// LicenseFile is bundled into the combined archive.
	LicenseFile string `yaml:"license_file"`
	// Platforms is the ordered platform set; the pipeline processes it in
	// reverse order, matching the historical behavior.
	Platforms []string `yaml:"platforms"`
	// Summaries maps component names to upload summary texts. A component
	// without a summary cannot be uploaded and aborts the run.
	Summaries map[string]string `yaml:"summaries"`
	// Labels maps platforms to the OS classification label attached to
	// uploads.
	Labels map[string]string `yaml:"labels"`
	// ExtraFiles maps a component to companion files bundled into its
	// archive instead of being packaged standalone. A "{version}" marker in
	// a file name expands to the owning component's version with the
	// trailing revision stripped.
	ExtraFiles map[string][]string `yaml:"extra_files"`
	// CombinedSummary is the upload summary of the all-in-one archive.
	CombinedSummary string `yaml:"combined_summary"`
	// UploadURL is the release-store endpoint archives are posted to.
	UploadURL string `yaml:"upload_url"`
	// CredentialsHost selects the credentials record in the netrc file.
	CredentialsHost string `yaml:"credentials_host"`
	// CredentialsFile is the netrc file path; empty means ~/.netrc.
	CredentialsFile string `yaml:"credentials_file"`
	// WikiRepoURL is the documentation repository carrying redirect pages.
	WikiRepoURL string `yaml:"wiki_repo_url"`
	// WikiDir is the local clone directory of the wiki repository.
	WikiDir string `yaml:"wiki_dir"`
	// RedirectPages lists the components whose <name>.html redirect page is
	// rewritten after the platform loop.
	RedirectPages []string `yaml:"redirect_pages"`
	// CommitMessage is used for the wiki commit.
	CommitMessage string `yaml:"commit_message"`
}

const (
	// DefaultConfigFilename is the default location of pipeline settings.
	DefaultConfigFilename = "release-publisher.yaml"

	// DefaultBuildServerHost is the build farm machine holding artifacts.
	DefaultBuildServerHost = "callisto.local"

	// DefaultBuildServerPath is the artifact root on the build server.
	DefaultBuildServerPath = "/var/lib/buildbot/upload"

	// DefaultProject is the release-store project name.
	DefaultProject = "ampl"

	// DefaultStagingDir is the local staging directory name.
	DefaultStagingDir = "ampl-open"

	// DefaultManifestFilename is the component/version manifest name.
	DefaultManifestFilename = "versions"

	// DefaultLicenseFile is the license bundled into the combined archive.
	DefaultLicenseFile = "LICENSE"

	// DefaultCombinedSummary describes the all-in-one archive.
	DefaultCombinedSummary = "Open-source AMPL solvers and libraries"

	// DefaultUploadURL is the release-store upload endpoint.
	DefaultUploadURL = "https://ampl.googlecode.com/files"

	// DefaultCredentialsHost selects the upload credentials in ~/.netrc.
	DefaultCredentialsHost = "code.google.com"

	// DefaultWikiRepoURL is the documentation repository remote.
	DefaultWikiRepoURL = "https://code.google.com/p/ampl.wiki/"

	// DefaultWikiDir is the local wiki clone directory.
	DefaultWikiDir = "ampl.wiki"

	// DefaultCommitMessage is used when committing redirect page updates.
	DefaultCommitMessage = "update versions"

	// DefaultFilePermissions is the file permission for persisted settings.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// defaultPlatforms is the fixed ordered platform set.
func defaultPlatforms() []string {
	return []string{"linux32", "linux64", "macosx", "win32", "win64"}
}

// defaultSummaries maps component names to upload summary texts.
func defaultSummaries() map[string]string {
	return map[string]string{
		"amplgsl":  "AMPL bindings for the GNU Scientific Library",
		"ampltabl": "ODBC table handler",
		"gecode":   "Gecode solver",
		"jacop":    "JaCoP solver",
		"cbc":      "COIN-OR CBC solver",
	}
}

// defaultLabels maps platforms to OS classification labels.
func defaultLabels() map[string]string {
	return map[string]string{
		"linux32": "OpSys-Linux",
		"linux64": "OpSys-Linux",
		"macosx":  "OpSys-OSX",
		"win32":   "OpSys-Windows",
		"win64":   "OpSys-Windows",
	}
}

// defaultExtraFiles declares companion files bundled into another component's
// archive. The JaCoP jar carries the component version in its file name.
func defaultExtraFiles() map[string][]string {
	return map[string][]string{
		"jacop": {"ampljacop.jar", "JaCoP-{version}.jar"},
	}
}

// Default returns a configuration populated with the built-in constants.
func Default() *Config {
	cfg := new(Config)
	// Validate never fails on a fresh config; it only fills defaults.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path. A missing file is not an
// error: the built-in defaults are returned so the publisher can run without
// any local setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills every empty field with its default and checks URL-shaped
// fields for well-formedness.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BuildServerHost == "" {
		cfg.BuildServerHost = DefaultBuildServerHost
	}

	if cfg.BuildServerPath == "" {
		cfg.BuildServerPath = DefaultBuildServerPath
	}

	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}

	if cfg.ManifestFilename == "" {
		cfg.ManifestFilename = DefaultManifestFilename
	}

	if cfg.LicenseFile == "" {
		cfg.LicenseFile = DefaultLicenseFile
	}

	if len(cfg.Platforms) == 0 {
		cfg.Platforms = defaultPlatforms()
	}

	if len(cfg.Summaries) == 0 {
		cfg.Summaries = defaultSummaries()
	}

	if len(cfg.Labels) == 0 {
		cfg.Labels = defaultLabels()
	}

	if len(cfg.ExtraFiles) == 0 {
		cfg.ExtraFiles = defaultExtraFiles()
	}

	if cfg.CombinedSummary == "" {
		cfg.CombinedSummary = DefaultCombinedSummary
	}

	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultUploadURL
	}

	if cfg.CredentialsHost == "" {
		cfg.CredentialsHost = DefaultCredentialsHost
	}

	if cfg.WikiRepoURL == "" {
		cfg.WikiRepoURL = DefaultWikiRepoURL
	}

	if cfg.WikiDir == "" {
		cfg.WikiDir = DefaultWikiDir
	}

	if len(cfg.RedirectPages) == 0 {
		cfg.RedirectPages = []string{"ampltabl", "gecode"}
	}

	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultCommitMessage
	}

	if _, err := url.ParseRequestURI(cfg.UploadURL); err != nil {
		return fmt.Errorf("invalid upload URL: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.WikiRepoURL); err != nil {
		return fmt.Errorf("invalid wiki repository URL: %w", err)
	}

	return nil
}
