package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/daxiondi/openclaw-desktop/internal/command"
	"github.com/daxiondi/openclaw-desktop/internal/fsutil"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// errInstalledExecutableNotFound is returned when no executable is found
// at any conventional location inside an installed prefix.
var errInstalledExecutableNotFound = errors.New("installed executable not found in snapshot")

// installedExecutableCandidates lists where an install places the tool's
// executable inside a prefix, most specific first. Wrapper scripts take
// priority over raw entry-point files because they carry the correct
// interpreter invocation.
func installedExecutableCandidates(prefix, pkg string) []string {
	wrapper := pkg
	if goruntime.GOOS == "windows" {
		wrapper = pkg + ".cmd"
	}

	return []string{
		filepath.Join(prefix, "bin", wrapper),
		filepath.Join(prefix, "node_modules", ".bin", wrapper),
		filepath.Join(prefix, "node_modules", pkg, pkg+".mjs"),
		filepath.Join(prefix, "lib", "node_modules", pkg, pkg+".mjs"),
	}
}

// LocateInstalledExecutable probes the conventional locations and returns
// the first regular file found.
func LocateInstalledExecutable(prefix, pkg string) (string, error) {
	for _, candidate := range installedExecutableCandidates(prefix, pkg) {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s: %w", prefix, errInstalledExecutableNotFound)
}

// verifySnapshot copies the snapshot into an isolated directory and runs
// the installed tool's version subcommand against the bundled runtime.
// A bundle that cannot report its own version must not ship.
func (b *builder) verifySnapshot(ctx context.Context) error {
	verifyDir, err := os.MkdirTemp("", "openclaw-verify-")
	if err != nil {
		return fmt.Errorf("verify snapshot: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(verifyDir)
	}()

	isolated := filepath.Join(verifyDir, prefixDirName)

	err = fsutil.CopyTree(filepath.Join(b.bundleDir, prefixDirName), isolated, fsutil.CopyOptions{})
	if err != nil {
		return fmt.Errorf("verify snapshot: %w", err)
	}

	executable, err := LocateInstalledExecutable(isolated, b.cfg.PackageName)
	if err != nil {
		return fmt.Errorf("verify snapshot: %w", err)
	}

	runtimeDir := filepath.Join(b.bundleDir, runtimeDirName)

	spec := command.Spec{
		Name:    executable,
		Args:    []string{"--version"},
		Env:     command.PrependPath(os.Environ(), runtimeDir),
		Timeout: b.cfg.CommandTimeout,
	}

	// Raw entry-point files are not directly executable, they need the
	// bundled runtime as interpreter.
	if strings.HasSuffix(executable, ".mjs") {
		spec.Name = filepath.Join(runtimeDir, filepath.Base(b.runtime.Path))
		spec.Args = []string{executable, "--version"}
	}

	result, err := command.RunChecked(ctx, spec)
	if err != nil {
		return fmt.Errorf("verify snapshot: %w", err)
	}

	logger.InfoKV(ctx, "Snapshot verified",
		"executable", executable,
		"reported", strings.TrimSpace(result.Stdout))

	return nil
}
