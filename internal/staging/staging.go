package staging

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"

	"github.com/amplopt/release-publisher/internal/logger"
)

// Manager owns the local staging directory and repopulates it from the build
// server, one platform at a time.
type Manager struct {
	// host is the build server holding per-platform artifact directories.
	host string
	// basePath is the artifact root on the build server.
	basePath string
	// dir is the local staging directory.
	dir string
}

// NewManager creates a staging manager for the provided build server and
// local directory.
func NewManager(host, basePath, dir string) *Manager {
	return &Manager{
		host:     host,
		basePath: basePath,
		dir:      dir,
	}
}

// Dir returns the local staging directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Clean removes the staging directory recursively. A missing directory is not
// an error.
func (m *Manager) Clean() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}

	return nil
}

// Fetch repopulates the staging directory with the artifacts of one platform
// by invoking the remote copy utility. The copy's own output is passed
// through to the console. A transport failure propagates to the caller; there
// is no retry.
func (m *Manager) Fetch(ctx context.Context, platform string) error {
	source := m.remoteSpec(platform)

	logger.InfoKV(ctx, "Downloading binaries", "platform", platform, "source", source)

	cmd := exec.CommandContext(ctx, "scp", "-r", source, m.dir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("copy %s: %w", source, err)
	}

	return nil
}

// remoteSpec builds the scp source argument for a platform.
func (m *Manager) remoteSpec(platform string) string {
	return m.host + ":" + path.Join(m.basePath, platform)
}
