package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daxiondi/openclaw-desktop/internal/service/release"
	"github.com/daxiondi/openclaw-desktop/internal/version"
)

// rootCmd represents the base command for generating the update feed.
var rootCmd = &cobra.Command{
	Use:   "openclaw-release-gen <assets-dir> <tag> <repository>",
	Short: "Generate the signed update feed from built release assets.",
	Long: `Scans a directory of built release assets for signed installers,
classifies each one onto its platform targets and writes latest.json,
the update feed consumed by the desktop application.

The repository identifier (owner/name) parameterizes the download URLs,
the tag names the release the assets belong to (e.g. v1.2.3).`,
	Args: cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &release.Options{
			AssetsDir: args[0],
			Tag:       args[1],
			Repo:      args[2],
		}

		return release.Run(ctx, options)
	},
}

// Execute runs the openclaw-release-gen CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
