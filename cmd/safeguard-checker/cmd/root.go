package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/safeguardhq/safeguard/internal/config"
	"github.com/safeguardhq/safeguard/internal/service/checker"
	"github.com/safeguardhq/safeguard/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// interval is the cadence of evaluation triggers.
	interval time.Duration
	// once triggers a single evaluation pass instead of looping.
	once bool

	// rootCmd represents the base command for triggering evaluation passes.
	rootCmd = &cobra.Command{
		Use:   "safeguard-checker [server-url]",
		Short: "Trigger watchdog evaluation passes on a fixed interval.",
		Long: `External scheduler that invokes the safeguard server's check-all endpoint.

Runs at a fixed interval (default one minute). The evaluation pass itself is
idempotent under any trigger frequency: at most one alert fan-out happens per
person per calendar day. With --once the trigger fires a single pass and exits,
making it suitable for cron.
Server URL can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server URL argument if provided, otherwise rely on config.
			var serverURL string
			if len(args) > 0 {
				serverURL = args[0]
			}

			checkerOptions := &checker.Options{
				ConfigPath: configPath,
				ServerURL:  serverURL,
				Interval:   interval,
				Once:       once,
			}

			return checker.Run(ctx, checkerOptions)
		},
	}
)

// Execute runs the safeguard-checker CLI and exits with non-zero status on error.
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
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", checker.DefaultInterval, "time between evaluation triggers")
	rootCmd.Flags().BoolVar(&once, "once", false, "trigger a single evaluation pass and exit")
}
