package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// Options contains inputs for the release manifest generator entry point.
type Options struct {
	// AssetsDir is the directory tree of built installers and signatures.
	AssetsDir string
	// Tag is the release tag, usually with a leading "v".
	Tag string
	// Repo is the repository identifier used in download URLs.
	Repo string
	// Out receives the human-readable target summary (defaults to stdout).
	Out io.Writer
}

// manifestFilePermissions is used for the written update feed.
const manifestFilePermissions = 0o644

// Run scans the assets directory, classifies signed artifacts and writes the
// update feed. Nothing is written when zero artifacts classify.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "openclaw-release-gen")

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if _, err := os.Stat(opts.AssetsDir); err != nil {
		return fmt.Errorf("assets directory: %w", err)
	}

	candidates, err := scanArtifacts(ctx, opts.AssetsDir)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Scanned release assets",
		"assets_dir", opts.AssetsDir, "signed_artifacts", len(candidates))

	winners := selectWinners(candidates)

	manifest, err := buildManifest(opts.Repo, opts.Tag, winners, time.Now())
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(opts.AssetsDir, ManifestFilename)
	if err = writeManifest(manifestPath, manifest); err != nil {
		return err
	}

	printSummary(opts.Out, manifest.Version, winners)

	logger.InfoKV(ctx, "Update feed written",
		"path", manifestPath, "version", manifest.Version, "platforms", len(manifest.Platforms))

	return nil
}

// writeManifest serializes the feed with stable key order for reproducible
// output.
func writeManifest(path string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal update feed: %w", err)
	}

	data = append(data, '\n')

	if err = os.WriteFile(path, data, manifestFilePermissions); err != nil {
		return fmt.Errorf("write update feed: %w", err)
	}

	return nil
}

// printSummary writes the target-to-filename table for the operator.
func printSummary(out io.Writer, version string, winners map[string]Candidate) {
	targets := make([]string, 0, len(winners))
	for target := range winners {
		targets = append(targets, target)
	}

	sort.Strings(targets)

	fmt.Fprintf(out, "Release %s targets:\n", version)

	for _, target := range targets {
		fmt.Fprintf(out, "  %s -> %s\n", target, winners[target].FileName)
	}
}
