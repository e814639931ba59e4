package bundler

import (
	"context"
	"fmt"
	"os"

	"github.com/daxiondi/openclaw-desktop/internal/config"
	"github.com/daxiondi/openclaw-desktop/internal/fsutil"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// Options controls a single bundle build.
type Options struct {
	// ConfigPath is the settings file path, empty means the default location.
	ConfigPath string
	// SkipPrep skips the whole build, useful for fast local iteration when
	// a previously built bundle is still in place.
	SkipPrep bool
	// NodeOverride is an operator-supplied runtime executable to bundle
	// instead of provisioning one.
	NodeOverride string
	// SkipVerify skips the snapshot verification step.
	SkipVerify bool
}

// builder carries the state of one bundle build.
type builder struct {
	cfg        *config.Config
	opts       *Options
	npm        string
	bundleDir  string
	scratchDir string
	source     *PackageSource
	runtime    *Runtime
}

// Run builds a self-contained offline bundle of the tool.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "openclaw-bundler")

	if opts.SkipPrep {
		logger.Warn(ctx, "Bundle preparation skipped by operator")

		return nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	b := &builder{
		cfg:       cfg,
		opts:      opts,
		npm:       NpmExecutable(),
		bundleDir: cfg.BundleDir,
	}

	return b.run(ctx)
}

func (b *builder) run(ctx context.Context) error {
	scratchDir, err := os.MkdirTemp("", "openclaw-bundle-")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	// Scratch removal is unconditional, success or failure.
	defer func() {
		_ = os.RemoveAll(scratchDir)
	}()

	b.scratchDir = scratchDir

	// Discard any partial state from a previous run.
	if err := fsutil.RecreateDir(b.bundleDir); err != nil {
		return fmt.Errorf("recreate bundle directory: %w", err)
	}

	source, err := b.resolveSource(ctx)
	if err != nil {
		return err
	}

	b.source = source

	runtime, err := b.resolveRuntime(ctx)
	if err != nil {
		return err
	}

	b.runtime = runtime

	if err := b.assemble(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Bundle ready",
		"bundle_dir", b.bundleDir,
		"tool_version", b.source.Version,
		"runtime_version", b.runtime.Version.String())

	return nil
}
