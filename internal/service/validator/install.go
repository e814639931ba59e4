package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/daxiondi/openclaw-desktop/internal/command"
	"github.com/daxiondi/openclaw-desktop/internal/fsutil"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
	"github.com/daxiondi/openclaw-desktop/internal/service/bundler"
)

var (
	// errBundleMissing is returned when no built bundle exists to validate.
	errBundleMissing = errors.New("bundle directory not found, build a bundle first")
	// errCredentialsMissing is returned when the seed credential file is absent.
	errCredentialsMissing = errors.New("credential file not found")
	// errBundleNotInstallable is returned when the bundle has neither a
	// prefix snapshot nor an archive with an offline cache.
	errBundleNotInstallable = errors.New("bundle has no snapshot and no offline cache")
)

// credentialsPath resolves the seed credential file, defaulting to the
// tool's well-known location in the operator's home directory.
func (c *checker) credentialsPath() (string, error) {
	if c.cfg.CredentialsFile != "" {
		return c.cfg.CredentialsFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve credentials: %w", err)
	}

	return filepath.Join(home, ".claude", ".credentials.json"), nil
}

// seedCredentials copies the operator's credential file into the
// ephemeral home so onboarding can pick it up as an auth source.
func (c *checker) seedCredentials(ctx context.Context) error {
	source, err := c.credentialsPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%s: %w", source, errCredentialsMissing)
	}

	dst := filepath.Join(c.homeDir, ".claude", ".credentials.json")
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return fmt.Errorf("seed credentials: %w", err)
	}

	if err := fsutil.CopyFile(source, dst); err != nil {
		return fmt.Errorf("seed credentials: %w", err)
	}

	logger.InfoKV(ctx, "Seeded credentials into ephemeral home", "source", source)

	return nil
}

// runtimeDir is the bundled runtime's directory, prepended to PATH for
// every child invocation during validation.
func (c *checker) runtimeDir() string {
	return filepath.Join(c.cfg.BundleDir, "runtime")
}

// installFromBundle materializes an installed prefix inside the ephemeral
// home, preferring the bundle's prefix snapshot. When the snapshot is
// absent it falls back to an offline install from the bundle's cache.
func (c *checker) installFromBundle(ctx context.Context) (string, error) {
	target := filepath.Join(c.homeDir, "install")

	snapshot := filepath.Join(c.cfg.BundleDir, "prefix")
	if info, err := os.Stat(snapshot); err == nil && info.IsDir() {
		if err := fsutil.CopyTree(snapshot, target, fsutil.CopyOptions{}); err != nil {
			return "", fmt.Errorf("install from snapshot: %w", err)
		}

		logger.InfoKV(ctx, "Installed tool from bundle snapshot", "prefix", target)

		return target, nil
	}

	archive := filepath.Join(c.cfg.BundleDir, c.cfg.PackageName+".tgz")
	cache := filepath.Join(c.cfg.BundleDir, "npm-cache")

	if _, err := os.Stat(archive); err != nil {
		return "", fmt.Errorf("%s: %w", c.cfg.BundleDir, errBundleNotInstallable)
	}

	if info, err := os.Stat(cache); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", c.cfg.BundleDir, errBundleNotInstallable)
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("install from cache: %w", err)
	}

	name, args := c.installerCommand()
	args = append(args,
		"install", "--prefix", target, archive,
		"--cache", cache, "--offline",
		"--no-audit", "--no-fund", "--loglevel=error")

	if _, err := command.RunChecked(ctx, command.Spec{
		Name:    name,
		Args:    args,
		Env:     command.PrependPath(c.env, c.runtimeDir()),
		Timeout: c.cfg.CommandTimeout,
	}); err != nil {
		return "", fmt.Errorf("install from cache: %w", err)
	}

	logger.InfoKV(ctx, "Installed tool from offline cache", "prefix", target)

	return target, nil
}

// installerCommand picks the package manager invocation for offline
// installs: the bundle's own client driven by the bundled runtime when
// both are present, the host's launcher otherwise.
func (c *checker) installerCommand() (string, []string) {
	node := "node"
	if runtime.GOOS == "windows" {
		node = "node.exe"
	}

	bundledNode := filepath.Join(c.runtimeDir(), node)
	bundledClient := filepath.Join(c.cfg.BundleDir, "client", "bin", "npm-cli.js")

	if _, err := os.Stat(bundledNode); err == nil {
		if _, err := os.Stat(bundledClient); err == nil {
			return bundledNode, []string{bundledClient}
		}
	}

	return c.npm, nil
}

// toolInvocation maps the installed executable onto a runnable command.
// Raw entry-point files need the bundled runtime as their interpreter.
func (c *checker) toolInvocation(executable string, args ...string) command.Spec {
	spec := command.Spec{
		Name:    executable,
		Args:    args,
		Env:     command.PrependPath(c.env, c.runtimeDir()),
		Timeout: c.cfg.CommandTimeout,
	}

	if filepath.Ext(executable) == ".mjs" {
		node := "node"
		if runtime.GOOS == "windows" {
			node = "node.exe"
		}

		spec.Name = filepath.Join(c.runtimeDir(), node)
		spec.Args = append([]string{executable}, args...)
	}

	return spec
}

// locateExecutable probes the installed prefix for the tool's executable.
func (c *checker) locateExecutable(prefix string) (string, error) {
	executable, err := bundler.LocateInstalledExecutable(prefix, c.cfg.PackageName)
	if err != nil {
		return "", fmt.Errorf("locate installed tool: %w", err)
	}

	return executable, nil
}
