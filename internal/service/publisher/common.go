package publisher

import (
	"context"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/amplopt/release-publisher/internal/logger"
)

const (
	// MarkerFilename marks that a publisher run is in progress to avoid
	// parallel execution.
	MarkerFilename = "release-publisher-marker.bin"

	// markerLifetime is the period after which a stale run marker is ignored.
	markerLifetime = 30 * time.Second

	// basePublisherExecutable is the publisher binary name; the platform
	// helper appends the extension when needed.
	basePublisherExecutable = "release-publisher"
)

// getExecutableExtension returns the executable suffix of the current platform.
func getExecutableExtension() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}

	return ""
}

// publisherExecutable returns the publisher binary name for this platform.
func publisherExecutable() string {
	return basePublisherExecutable + getExecutableExtension()
}

// IsPublisherRunningNow checks presence of a run marker and attempts recovery
// if it looks stale.
func IsPublisherRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of a run marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(publisherExecutable()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Run marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
