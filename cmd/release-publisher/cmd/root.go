package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amplopt/release-publisher/internal/config"
	"github.com/amplopt/release-publisher/internal/logger"
	"github.com/amplopt/release-publisher/internal/service/publisher"
	"github.com/amplopt/release-publisher/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel overrides the default logging level.
	logLevel string

	// rootCmd represents the base command running the whole release pipeline.
	rootCmd = &cobra.Command{
		Use:   "release-publisher",
		Short: "Package build-server binaries and publish them to the release store",
		Long: "release-publisher downloads per-platform binaries from the build server, " +
			"repackages them into zip archives, uploads the archives to the hosted " +
			"file-release store and updates the wiki redirect pages.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
			}

			options := &publisher.Options{
				ConfigPath: configPath,
			}

			return publisher.Run(ctx, options)
		},
	}
)

// Execute runs the release-publisher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
}
