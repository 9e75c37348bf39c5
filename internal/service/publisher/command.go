package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/amplopt/release-publisher/internal/logger"
)

// Options contains inputs for the publisher entry point.
type Options struct {
	// ConfigPath is an optional path to pipeline settings
	// (defaults to release-publisher.yaml; a missing file means built-in
	// defaults).
	ConfigPath string
}

// errPublisherRunning indicates that an attempt was made to start the
// publisher while another run is in progress.
var errPublisherRunning = errors.New("the publisher is running now")

// Run executes the whole release pipeline: every platform in turn, then the
// wiki redirect update. It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "release-publisher")

	pub, err := newPublisher(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("initialize publisher: %w", err)
	}

	defer pub.cleanup(ctx)

	if err = pub.Run(ctx); err != nil {
		return fmt.Errorf("publisher failed: %w", err)
	}

	logger.Info(ctx, "Publisher completed successfully")

	return nil
}
