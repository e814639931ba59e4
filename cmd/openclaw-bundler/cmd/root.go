package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daxiondi/openclaw-desktop/internal/config"
	"github.com/daxiondi/openclaw-desktop/internal/service/bundler"
	"github.com/daxiondi/openclaw-desktop/internal/version"
)

// Environment switches honored in addition to flags, matching the way the
// build pipeline drives the bundler from scripts.
const (
	envSkipPrep     = "SKIP_BUNDLE_PREP"
	envNodeOverride = "BUNDLE_NODE_OVERRIDE"
	envSkipVerify   = "BUNDLE_SKIP_VERIFY"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for building offline bundles.
	rootCmd = &cobra.Command{
		Use:   "openclaw-bundler",
		Short: "Build a self-contained offline bundle of the tool.",
		Long: `Builds an offline-installable bundle: packs the tool from a local checkout
or the registry, provisions a runtime, warms an offline install cache and
snapshots a verified installed prefix into the bundle directory.

Environment switches: SKIP_BUNDLE_PREP skips the whole build,
BUNDLE_NODE_OVERRIDE supplies a runtime executable to bundle as-is,
BUNDLE_SKIP_VERIFY skips snapshot verification.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bundler.Options{
				ConfigPath:   configPath,
				SkipPrep:     envEnabled(envSkipPrep),
				NodeOverride: os.Getenv(envNodeOverride),
				SkipVerify:   envEnabled(envSkipVerify),
			}

			return bundler.Run(ctx, options)
		},
	}
)

// envEnabled treats any value except empty, "0" and "false" as set.
func envEnabled(name string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))

	return value != "" && value != "0" && value != "false"
}

// Execute runs the openclaw-bundler CLI and exits with non-zero status on error.
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
