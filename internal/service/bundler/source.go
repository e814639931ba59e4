package bundler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/daxiondi/openclaw-desktop/internal/command"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// SourceOrigin records where the packed archive came from.
type SourceOrigin string

const (
	// SourceLocalBuild means the archive was packed from a local checkout.
	SourceLocalBuild SourceOrigin = "local-build"
	// SourceRegistry means the archive was fetched from the public registry.
	SourceRegistry SourceOrigin = "registry"
)

// PackageSource is a resolved, packed tool archive ready for bundling.
type PackageSource struct {
	// Origin tells whether the archive came from a local build or the registry.
	Origin SourceOrigin
	// Version is the exact version carried by the archive.
	Version string
	// ArchivePath is the absolute path of the packed archive on disk.
	ArchivePath string
}

var (
	// errPackNoOutput is returned when packing produced no archive name.
	errPackNoOutput = errors.New("pack produced no output")
	// errLocalVersionUnknown is returned when a local checkout has no readable version.
	errLocalVersionUnknown = errors.New("local checkout declares no version")
	// errVersionMismatch is returned when a packed archive carries an unexpected version.
	errVersionMismatch = errors.New("packed archive version does not match checkout")
)

// distEntryCandidates are build outputs whose presence marks a checkout as built.
var distEntryCandidates = []string{
	filepath.Join("dist", "openclaw.mjs"),
	filepath.Join("dist", "index.js"),
}

// NpmExecutable returns the package manager launcher name for the host OS.
func NpmExecutable() string {
	if runtime.GOOS == "windows" {
		return "npm.cmd"
	}

	return "npm"
}

// packageMeta mirrors the fields the resolver needs from a checkout's metadata file.
type packageMeta struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// readPackageMeta reads the metadata file of a local checkout.
// A missing file is not an error, the caller falls back to the registry.
func readPackageMeta(sourceDir string) (*packageMeta, error) {
	raw, err := os.ReadFile(filepath.Clean(filepath.Join(sourceDir, "package.json")))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read package metadata: %w", err)
	}

	var meta packageMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode package metadata: %w", err)
	}

	return &meta, nil
}

// localDistBuilt reports whether the checkout carries a usable build output.
// An empty entry file counts as absent, a stale toolchain can leave one behind.
func localDistBuilt(sourceDir string) bool {
	for _, candidate := range distEntryCandidates {
		info, err := os.Stat(filepath.Join(sourceDir, candidate))
		if err != nil || info.IsDir() {
			continue
		}

		if info.Size() > 0 {
			return true
		}
	}

	return false
}

// parsePackOutput extracts the archive file name from pack command output.
// The archive name is the last non-blank line, the lines before it are noise.
func parsePackOutput(stdout string) (string, error) {
	lines := strings.Split(stdout, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line, nil
		}
	}

	return "", errPackNoOutput
}

// resolveSource produces a packed archive of the tool, preferring a built
// local checkout over the public registry.
func (b *builder) resolveSource(ctx context.Context) (*PackageSource, error) {
	meta, err := readPackageMeta(b.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	if meta != nil && localDistBuilt(b.cfg.SourceDir) {
		return b.packLocal(ctx, meta)
	}

	spec := b.cfg.PackageName + "@latest"
	if meta != nil && meta.Version != "" {
		spec = b.cfg.PackageName + "@" + meta.Version
	}

	logger.InfoKV(ctx, "Packing tool from registry", "spec", spec)

	return b.packRegistry(ctx, spec)
}

// packLocal packs the built checkout and confirms the archive content matches it.
func (b *builder) packLocal(ctx context.Context, meta *packageMeta) (*PackageSource, error) {
	if meta.Version == "" {
		return nil, fmt.Errorf("%s: %w", b.cfg.SourceDir, errLocalVersionUnknown)
	}

	logger.InfoKV(ctx, "Packing tool from local checkout",
		"source_dir", b.cfg.SourceDir,
		"version", meta.Version)

	archivePath, err := b.pack(ctx, []string{"pack", "--pack-destination", b.scratchDir}, b.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	info, err := InspectArchive(archivePath)
	if err != nil {
		return nil, err
	}

	if info.Version != meta.Version {
		return nil, fmt.Errorf("archive has %s, checkout has %s: %w",
			info.Version, meta.Version, errVersionMismatch)
	}

	return &PackageSource{
		Origin:      SourceLocalBuild,
		Version:     info.Version,
		ArchivePath: archivePath,
	}, nil
}

// packRegistry downloads and packs the given spec from the public registry.
func (b *builder) packRegistry(ctx context.Context, spec string) (*PackageSource, error) {
	archivePath, err := b.pack(ctx, []string{"pack", spec, "--pack-destination", b.scratchDir}, "")
	if err != nil {
		return nil, err
	}

	info, err := InspectArchive(archivePath)
	if err != nil {
		return nil, err
	}

	return &PackageSource{
		Origin:      SourceRegistry,
		Version:     info.Version,
		ArchivePath: archivePath,
	}, nil
}

// pack runs the package manager's pack command and returns the archive path.
func (b *builder) pack(ctx context.Context, args []string, dir string) (string, error) {
	result, err := command.RunChecked(ctx, command.Spec{
		Name:    b.npm,
		Args:    args,
		Dir:     dir,
		Timeout: b.cfg.CommandTimeout,
	})
	if err != nil {
		return "", fmt.Errorf("pack tool archive: %w", err)
	}

	name, err := parsePackOutput(result.Stdout)
	if err != nil {
		return "", fmt.Errorf("pack tool archive: %w", err)
	}

	archivePath := filepath.Join(b.scratchDir, name)
	if _, err := os.Stat(archivePath); err != nil {
		return "", fmt.Errorf("pack tool archive: %w", err)
	}

	return archivePath, nil
}
