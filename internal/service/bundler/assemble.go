package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daxiondi/openclaw-desktop/internal/command"
	"github.com/daxiondi/openclaw-desktop/internal/fsutil"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// Names of the entries a finished bundle directory owns exclusively.
const (
	runtimeDirName = "runtime"
	clientDirName  = "client"
	cacheDirName   = "npm-cache"
	prefixDirName  = "prefix"
)

// errClientNotFound is returned when no package manager client tree exists.
var errClientNotFound = errors.New("package manager client tree not found")

// archiveName is the fixed name the packed archive gets inside the bundle.
func (b *builder) archiveName() string {
	return b.cfg.PackageName + ".tgz"
}

// stageArchive copies the packed archive into the bundle under its fixed name.
func (b *builder) stageArchive(ctx context.Context) error {
	dst := filepath.Join(b.bundleDir, b.archiveName())
	if err := fsutil.CopyFile(b.source.ArchivePath, dst); err != nil {
		return fmt.Errorf("stage archive: %w", err)
	}

	logger.InfoKV(ctx, "Staged tool archive",
		"version", b.source.Version,
		"origin", string(b.source.Origin))

	return nil
}

// stageRuntime copies the runtime executable into the bundle and makes it
// executable again, archive transport may strip the permission bit.
func (b *builder) stageRuntime(ctx context.Context) error {
	runtimeDir := filepath.Join(b.bundleDir, runtimeDirName)
	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		return fmt.Errorf("stage runtime: %w", err)
	}

	dst := filepath.Join(runtimeDir, filepath.Base(b.runtime.Path))
	if err := fsutil.CopyFile(b.runtime.Path, dst); err != nil {
		return fmt.Errorf("stage runtime: %w", err)
	}

	if err := fsutil.EnsureExecutable(dst); err != nil {
		return fmt.Errorf("stage runtime: %w", err)
	}

	logger.InfoKV(ctx, "Staged runtime",
		"version", b.runtime.Version.String(),
		"origin", string(b.runtime.Origin))

	return nil
}

// resolveClientDir locates the package manager's own client tree on the host.
func (b *builder) resolveClientDir(ctx context.Context) (string, error) {
	if b.cfg.ClientDir != "" {
		return b.cfg.ClientDir, nil
	}

	result, err := command.RunChecked(ctx, command.Spec{
		Name:    b.npm,
		Args:    []string{"root", "-g"},
		Timeout: b.cfg.CommandTimeout,
	})
	if err != nil {
		return "", fmt.Errorf("locate client tree: %w", err)
	}

	clientDir := filepath.Join(strings.TrimSpace(result.Stdout), "npm")

	info, err := os.Stat(clientDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", clientDir, errClientNotFound)
	}

	return clientDir, nil
}

// stageClient copies the client tree into the bundle, filtering out root
// configuration files that would leak host settings into the bundle.
func (b *builder) stageClient(ctx context.Context) error {
	clientDir, err := b.resolveClientDir(ctx)
	if err != nil {
		return err
	}

	dst := filepath.Join(b.bundleDir, clientDirName)

	err = fsutil.CopyTree(clientDir, dst, fsutil.CopyOptions{
		Skip: func(rel string) bool {
			return rel == ".npmrc" || rel == "npmrc"
		},
	})
	if err != nil {
		return fmt.Errorf("stage client: %w", err)
	}

	logger.InfoKV(ctx, "Staged package manager client", "source", clientDir)

	return nil
}

// installAndWarmCache installs the packed archive into a scratch prefix
// while writing every fetched package into the bundle's persistent cache.
// When building from a registry source this is the only step allowed to
// touch the network.
func (b *builder) installAndWarmCache(ctx context.Context) (string, error) {
	installPrefix := filepath.Join(b.scratchDir, "install-prefix")
	if err := os.MkdirAll(installPrefix, 0o755); err != nil {
		return "", fmt.Errorf("install tool: %w", err)
	}

	cacheDir := filepath.Join(b.bundleDir, cacheDirName)

	if _, err := command.RunChecked(ctx, command.Spec{
		Name: b.npm,
		Args: []string{
			"install", "--prefix", installPrefix, b.source.ArchivePath,
			"--cache", cacheDir,
			"--no-audit", "--no-fund", "--loglevel=error",
		},
		Timeout: b.cfg.CommandTimeout,
	}); err != nil {
		return "", fmt.Errorf("install tool: %w", err)
	}

	logger.InfoKV(ctx, "Installed tool into scratch prefix", "cache", cacheDir)

	return installPrefix, nil
}

// snapshotPrefix copies the scratch install prefix into the bundle,
// dereferencing symlinks. Local installs produce absolute symlinks into
// caches that only resolve on the build host.
func (b *builder) snapshotPrefix(ctx context.Context, installPrefix string) error {
	dst := filepath.Join(b.bundleDir, prefixDirName)

	err := fsutil.CopyTree(installPrefix, dst, fsutil.CopyOptions{
		DereferenceSymlinks: true,
	})
	if err != nil {
		return fmt.Errorf("snapshot prefix: %w", err)
	}

	logger.InfoKV(ctx, "Snapshotted install prefix", "prefix", dst)

	return nil
}

// assemble runs the bundle build end to end against resolved source and runtime.
func (b *builder) assemble(ctx context.Context) error {
	if err := b.stageArchive(ctx); err != nil {
		return err
	}

	if err := b.stageRuntime(ctx); err != nil {
		return err
	}

	if err := b.stageClient(ctx); err != nil {
		return err
	}

	installPrefix, err := b.installAndWarmCache(ctx)
	if err != nil {
		return err
	}

	if err := b.snapshotPrefix(ctx, installPrefix); err != nil {
		return err
	}

	if b.opts.SkipVerify {
		logger.Warn(ctx, "Snapshot verification skipped by operator")
	} else if err := b.verifySnapshot(ctx); err != nil {
		return err
	}

	if err := b.writeManifest(ctx); err != nil {
		return err
	}

	// Registry archives can carry read-only permission bits that would
	// break the next build's in-place overwrite.
	if err := fsutil.MakeTreeWritable(b.bundleDir); err != nil {
		return fmt.Errorf("make bundle writable: %w", err)
	}

	return nil
}
