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
	"github.com/daxiondi/openclaw-desktop/internal/logger"
	"github.com/daxiondi/openclaw-desktop/internal/version"
)

// RuntimeOrigin records how the bundled runtime was obtained.
type RuntimeOrigin string

const (
	// RuntimeOverride means an operator-supplied executable was used as-is.
	RuntimeOverride RuntimeOrigin = "override"
	// RuntimeProvisioned means the runtime was installed into a fresh prefix.
	RuntimeProvisioned RuntimeOrigin = "provisioned"
)

// Runtime is a resolved runtime executable satisfying the minimum version.
type Runtime struct {
	// Path is the absolute path of the runtime executable.
	Path string
	// Version is the version the executable reports.
	Version version.Semver
	// Origin tells whether the executable was overridden or provisioned.
	Origin RuntimeOrigin
}

var (
	// errRuntimeTooOld is returned when a runtime fails the minimum version check.
	errRuntimeTooOld = errors.New("runtime version below minimum")
	// errRuntimeNotFound is returned when no executable exists in a provisioned prefix.
	errRuntimeNotFound = errors.New("runtime executable not found in prefix")
)

// runtimeExecutableCandidates lists where the runtime package places its
// executable inside an install prefix, per host OS.
func runtimeExecutableCandidates(prefix string) []string {
	if goruntime.GOOS == "windows" {
		return []string{
			filepath.Join(prefix, "node.exe"),
			filepath.Join(prefix, "node_modules", "node", "bin", "node.exe"),
		}
	}

	return []string{
		filepath.Join(prefix, "bin", "node"),
		filepath.Join(prefix, "node_modules", "node", "bin", "node"),
	}
}

// probeRuntimeVersion asks the executable for its version and parses it.
func (b *builder) probeRuntimeVersion(ctx context.Context, executable string) (version.Semver, error) {
	result, err := command.RunChecked(ctx, command.Spec{
		Name:    executable,
		Args:    []string{"--version"},
		Timeout: b.cfg.CommandTimeout,
	})
	if err != nil {
		return version.Semver{}, fmt.Errorf("probe runtime version: %w", err)
	}

	parsed, err := version.ParseSemver(strings.TrimSpace(result.Stdout))
	if err != nil {
		return version.Semver{}, fmt.Errorf("probe runtime version: %w", err)
	}

	return parsed, nil
}

// resolveRuntime returns a runtime satisfying the configured minimum,
// preferring the operator override, otherwise provisioning a fresh one.
func (b *builder) resolveRuntime(ctx context.Context) (*Runtime, error) {
	minimum, err := version.ParseSemver(b.cfg.MinimumRuntime)
	if err != nil {
		return nil, fmt.Errorf("resolve runtime: %w", err)
	}

	if b.opts.NodeOverride != "" {
		if _, err := os.Stat(b.opts.NodeOverride); err != nil {
			return nil, fmt.Errorf("runtime override: %w", err)
		}

		reported, err := b.probeRuntimeVersion(ctx, b.opts.NodeOverride)
		if err != nil {
			return nil, err
		}

		if reported.AtLeast(minimum) {
			logger.InfoKV(ctx, "Using runtime override",
				"path", b.opts.NodeOverride,
				"version", reported.String())

			return &Runtime{
				Path:    b.opts.NodeOverride,
				Version: reported,
				Origin:  RuntimeOverride,
			}, nil
		}

		logger.WarnKV(ctx, "Runtime override is too old, provisioning a fresh runtime",
			"path", b.opts.NodeOverride,
			"version", reported.String(),
			"minimum", minimum.String())
	}

	return b.provisionRuntime(ctx, minimum)
}

// provisionRuntime installs the runtime package into an isolated prefix
// under the scratch directory and locates its executable.
func (b *builder) provisionRuntime(ctx context.Context, minimum version.Semver) (*Runtime, error) {
	prefix := filepath.Join(b.scratchDir, "runtime-prefix")
	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return nil, fmt.Errorf("provision runtime: %w", err)
	}

	spec := "node@" + b.cfg.MinimumRuntime

	logger.InfoKV(ctx, "Provisioning runtime", "spec", spec, "prefix", prefix)

	if _, err := command.RunChecked(ctx, command.Spec{
		Name: b.npm,
		Args: []string{
			"install", "--prefix", prefix, spec,
			"--no-audit", "--no-fund", "--loglevel=error",
		},
		Timeout: b.cfg.CommandTimeout,
	}); err != nil {
		return nil, fmt.Errorf("provision runtime: %w", err)
	}

	executable := ""

	for _, candidate := range runtimeExecutableCandidates(prefix) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			executable = candidate

			break
		}
	}

	if executable == "" {
		return nil, fmt.Errorf("%s: %w", prefix, errRuntimeNotFound)
	}

	reported, err := b.probeRuntimeVersion(ctx, executable)
	if err != nil {
		return nil, err
	}

	if !reported.AtLeast(minimum) {
		return nil, fmt.Errorf("provisioned %s, minimum is %s: %w",
			reported.String(), minimum.String(), errRuntimeTooOld)
	}

	return &Runtime{
		Path:    executable,
		Version: reported,
		Origin:  RuntimeProvisioned,
	}, nil
}
