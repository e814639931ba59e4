package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"

	"github.com/daxiondi/openclaw-desktop/internal/fsutil"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// ManifestFilename is the name of the manifest inside a finished bundle.
const ManifestFilename = "manifest.json"

// Manifest describes a finished bundle. Written once per build, never updated.
type Manifest struct {
	// GeneratedAt is the UTC build timestamp in RFC 3339 form.
	GeneratedAt string `json:"generated_at"`
	// ToolVersion is the exact packed tool version inside the bundle.
	ToolVersion string `json:"tool_version"`
	// ToolSource tells whether the tool came from a local build or the registry.
	ToolSource string `json:"tool_source"`
	// RuntimeVersion is the version the bundled runtime reports.
	RuntimeVersion string `json:"runtime_version"`
	// RuntimeSource tells whether the runtime was overridden or provisioned.
	RuntimeSource string `json:"runtime_source"`
	// Platform is the {os}-{arch} target the bundle was built on and for.
	Platform string `json:"platform"`
	// Files is the sorted slash-separated index of every file in the bundle.
	Files []string `json:"files"`
	// Checksums maps each indexed file to its base64-encoded checksum.
	Checksums map[string]string `json:"checksums"`
}

// platformTriple maps the build host onto the {os}-{arch} key form used
// across bundles and update feeds.
func platformTriple() string {
	arch := goruntime.GOARCH

	switch goruntime.GOARCH {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	}

	return goruntime.GOOS + "-" + arch
}

// buildManifest assembles the manifest for the finished bundle directory.
func (b *builder) buildManifest(now time.Time) (*Manifest, error) {
	files, err := fsutil.FileIndex(b.bundleDir)
	if err != nil {
		return nil, fmt.Errorf("index bundle: %w", err)
	}

	checksums, err := fsutil.TreeChecksums(b.bundleDir)
	if err != nil {
		return nil, fmt.Errorf("index bundle: %w", err)
	}

	return &Manifest{
		GeneratedAt:    now.UTC().Format(time.RFC3339),
		ToolVersion:    b.source.Version,
		ToolSource:     string(b.source.Origin),
		RuntimeVersion: b.runtime.Version.String(),
		RuntimeSource:  string(b.runtime.Origin),
		Platform:       platformTriple(),
		Files:          files,
		Checksums:      checksums,
	}, nil
}

// writeManifest writes the bundle manifest. The file index is taken before
// the manifest itself lands on disk, so the manifest never lists itself.
func (b *builder) writeManifest(ctx context.Context) error {
	manifest, err := b.buildManifest(time.Now())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	data = append(data, '\n')

	path := filepath.Join(b.bundleDir, ManifestFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	logger.InfoKV(ctx, "Bundle manifest written",
		"path", path,
		"tool_version", manifest.ToolVersion,
		"platform", manifest.Platform)

	return nil
}
