package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/daxiondi/openclaw-desktop/internal/config"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
	"github.com/daxiondi/openclaw-desktop/internal/service/bundler"
)

// Options controls one offline validation run.
type Options struct {
	// ConfigPath is the settings file path, empty means the default location.
	ConfigPath string
}

// checker carries the state of one validation run.
type checker struct {
	cfg          *config.Config
	npm          string
	homeDir      string
	env          []string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// Run validates a previously built bundle end to end without network
// access: install, onboard, start the local service and wait for it to
// answer over HTTP.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "openclaw-offline-check")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if info, err := os.Stat(cfg.BundleDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", cfg.BundleDir, errBundleMissing)
	}

	c := &checker{
		cfg:          cfg,
		npm:          bundler.NpmExecutable(),
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
	}

	return c.run(ctx)
}

func (c *checker) run(ctx context.Context) error {
	c.sweepStaleProcesses(ctx)

	homeDir, err := os.MkdirTemp("", "openclaw-e2e-home-")
	if err != nil {
		return fmt.Errorf("create ephemeral home: %w", err)
	}

	// The ephemeral environment is deleted on every exit path.
	defer func() {
		_ = os.RemoveAll(homeDir)
	}()

	c.homeDir = homeDir
	c.env = offlineEnv(os.Environ(), homeDir)

	if err := c.seedCredentials(ctx); err != nil {
		return err
	}

	prefix, err := c.installFromBundle(ctx)
	if err != nil {
		return err
	}

	executable, err := c.locateExecutable(prefix)
	if err != nil {
		return err
	}

	if err := c.onboard(ctx, executable); err != nil {
		return err
	}

	g, err := c.startGateway(ctx, executable)
	if err != nil {
		return err
	}

	// The child is terminated on every exit path, reachable or not.
	defer g.stop()

	url := fmt.Sprintf("http://127.0.0.1:%d/", c.cfg.GatewayPort)

	if err := c.waitReachable(ctx, url); err != nil {
		if errors.Is(err, errGatewayUnreachable) {
			return fmt.Errorf("%s:\n%s", err, g.diagnostic())
		}

		return err
	}

	logger.Info(ctx, "Offline validation passed")

	return nil
}
