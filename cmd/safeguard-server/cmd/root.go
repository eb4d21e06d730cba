package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/safeguardhq/safeguard/internal/config"
	"github.com/safeguardhq/safeguard/internal/service/server"
	"github.com/safeguardhq/safeguard/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where person records are persisted.
	stateFile string

	// rootCmd represents the base command for running the HTTP server.
	rootCmd = &cobra.Command{
		Use:   "safeguard-server [listen-address]",
		Short: "Run the safeguard watchdog HTTP server.",
		Long: `Starts the HTTP server that accepts device check-ins and evaluates daily windows.

The server listens on the address from configuration, overridable as an argument
(e.g. :5000, 0.0.0.0:8080). Person records are persisted to a JSON file or to
Redis for recovery across restarts. Evaluation passes are triggered through the
check-all endpoint by an external scheduler, or in-process when a check interval
is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the safeguard-server CLI and exits with non-zero status on error.
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
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", config.DefaultStateFilename, "path to persist person records")
}
