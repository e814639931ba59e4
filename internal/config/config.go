package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daxiondi/openclaw-desktop/internal/version"
)

// Config holds the pipeline settings shared by the bundler, release generator
// and offline checker binaries.
type Config struct {
	// SourceDir is the local checkout of the upstream CLI package.
	SourceDir string `yaml:"source_dir"`
	// PackageName is the registry name of the upstream CLI package.
	PackageName string `yaml:"package_name"`
	// BundleDir is the bundle resource directory recreated on every build.
	BundleDir string `yaml:"bundle_dir"`
	// ClientDir is the package-manager client tree to embed into the bundle.
	// When empty, the bundler resolves it from the host installation.
	ClientDir string `yaml:"client_dir"`
	// MinimumRuntime is the lowest runtime version accepted for bundling.
	MinimumRuntime string `yaml:"minimum_runtime"`
	// GatewayPort is the local port the tool's gateway service listens on.
	GatewayPort int `yaml:"gateway_port"`
	// CredentialsFile is the credential file reused by the offline check.
	// When empty, the well-known per-user path is used.
	CredentialsFile string `yaml:"credentials_file"`
	// CommandTimeout bounds individual external commands spawned by a stage.
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "openclaw-bundle.yaml"

	// DefaultSourceDir is the conventional sibling checkout of the CLI package.
	DefaultSourceDir = "../openclaw"

	// DefaultPackageName is the upstream CLI package on the public registry.
	DefaultPackageName = "openclaw"

	// DefaultBundleDir is where installer tooling picks up bundle resources.
	DefaultBundleDir = "bundle/resources/openclaw-bundle"

	// DefaultMinimumRuntime is the lowest runtime the bundled CLI supports.
	DefaultMinimumRuntime = "22.12.0"

	// DefaultGatewayPort is the port the gateway service binds locally.
	DefaultGatewayPort = 18789

	// DefaultCommandTimeout bounds a single external command invocation.
	DefaultCommandTimeout = 10 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPackageNameRequired is returned when the package name is missing.
	errPackageNameRequired = errors.New("package name must be provided")
	// errInvalidGatewayPort is returned for ports outside the TCP range.
	errInvalidGatewayPort = errors.New("gateway port must be between 1 and 65535")
)

// Default returns a configuration populated with the stock pipeline values.
func Default() *Config {
	return &Config{
		SourceDir:      DefaultSourceDir,
		PackageName:    DefaultPackageName,
		BundleDir:      DefaultBundleDir,
		MinimumRuntime: DefaultMinimumRuntime,
		GatewayPort:    DefaultGatewayPort,
		CommandTimeout: DefaultCommandTimeout,
	}
}

// Load reads configuration from the provided path and validates it.
// When the path is empty or names the default settings file and that file
// does not exist, the stock defaults are returned so the binaries run
// with no arguments.
func Load(path string) (*Config, error) {
	// The default filename is what the CLI flag carries when the operator
	// passes nothing, so its absence falls back to stock defaults too.
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills omitted values with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PackageName == "" {
		return errPackageNameRequired
	}

	if cfg.SourceDir == "" {
		cfg.SourceDir = DefaultSourceDir
	}

	if cfg.BundleDir == "" {
		cfg.BundleDir = DefaultBundleDir
	}

	if cfg.MinimumRuntime == "" {
		cfg.MinimumRuntime = DefaultMinimumRuntime
	}

	if _, err := version.ParseSemver(cfg.MinimumRuntime); err != nil {
		return fmt.Errorf("invalid minimum runtime version: %w", err)
	}

	if cfg.GatewayPort == 0 {
		cfg.GatewayPort = DefaultGatewayPort
	}

	if cfg.GatewayPort < 1 || cfg.GatewayPort > 65535 {
		return errInvalidGatewayPort
	}

	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}

	return nil
}
