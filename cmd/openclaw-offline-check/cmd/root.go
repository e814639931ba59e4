package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daxiondi/openclaw-desktop/internal/config"
	"github.com/daxiondi/openclaw-desktop/internal/service/validator"
	"github.com/daxiondi/openclaw-desktop/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for offline end-to-end validation.
	rootCmd = &cobra.Command{
		Use:   "openclaw-offline-check",
		Short: "Validate a built bundle end to end without network access.",
		Long: `Installs the tool from a previously built bundle into an ephemeral home,
runs non-interactive onboarding against the operator's existing credential
file, starts the local gateway and waits for it to answer over HTTP.

Proxy variables are pointed at an unreachable address for every spawned
process, so any accidental outbound call fails instead of masking a
broken offline bundle.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return validator.Run(ctx, &validator.Options{ConfigPath: configPath})
		},
	}
)

// Execute runs the openclaw-offline-check CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
