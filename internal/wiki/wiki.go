package wiki

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/amplopt/release-publisher/internal/logger"
)

// Updater rewrites version numbers embedded in static redirect pages of the
// documentation repository and pushes the change.
type Updater struct {
	// repoURL is the documentation repository remote.
	repoURL string
	// dir is the local clone directory.
	dir string
	// commitMessage is used for the version-bump commit.
	commitMessage string
}

// NewUpdater creates a wiki updater for the provided repository.
func NewUpdater(repoURL, dir, commitMessage string) *Updater {
	return &Updater{
		repoURL:       repoURL,
		dir:           dir,
		commitMessage: commitMessage,
	}
}

// Clone removes any stale clone and clones the documentation repository
// fresh. Failures propagate; there is no retry or conflict handling.
func (u *Updater) Clone(ctx context.Context) error {
	if err := os.RemoveAll(u.dir); err != nil {
		return fmt.Errorf("remove stale clone: %w", err)
	}

	logger.InfoKV(ctx, "Cloning documentation repository", "url", u.repoURL, "dir", u.dir)

	return u.git(ctx, "", "clone", u.repoURL, u.dir)
}

// UpdateRedirect rewrites the query-string version embedded in the redirect
// page <name>.html to the provided token, leaving all other content intact.
func (u *Updater) UpdateRedirect(ctx context.Context, name, token string) error {
	pagePath := filepath.Join(u.dir, name+".html")

	info, err := os.Stat(pagePath)
	if err != nil {
		return fmt.Errorf("stat redirect page: %w", err)
	}

	content, err := os.ReadFile(pagePath)
	if err != nil {
		return fmt.Errorf("read redirect page: %w", err)
	}

	logger.InfoKV(ctx, "Updating redirect page", "page", name+".html", "version", token)

	updated := ReplaceRedirectVersion(string(content), name, token)

	if err := os.WriteFile(pagePath, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write redirect page: %w", err)
	}

	return nil
}

// CommitAndPush records all page changes with the configured message and
// pushes them. Push failure propagates unrecovered.
func (u *Updater) CommitAndPush(ctx context.Context) error {
	if err := u.git(ctx, u.dir, "commit", "-a", "-m", u.commitMessage); err != nil {
		return err
	}

	return u.git(ctx, u.dir, "push")
}

// git runs one git command, optionally inside a working directory, passing
// its output through to the console.
func (u *Updater) git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}

	return nil
}

// ReplaceRedirectVersion replaces the digits following "q=<name>+" in the
// page content with the provided token. Everything outside that query string
// stays byte-identical.
func ReplaceRedirectVersion(content, name, token string) string {
	pattern := regexp.MustCompile("q=" + regexp.QuoteMeta(name) + `\+\d+`)

	return pattern.ReplaceAllString(content, "q="+name+"+"+token)
}
