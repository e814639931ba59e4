package bundler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daxiondi/openclaw-desktop/internal/config"
	"github.com/daxiondi/openclaw-desktop/internal/version"
)

func TestPlatformTriple(t *testing.T) {
	t.Parallel()

	triple := platformTriple()
	require.True(t, strings.HasPrefix(triple, runtime.GOOS+"-"))
	require.NotEqual(t, runtime.GOOS+"-", triple)
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()

	bundleDir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(bundleDir, "openclaw.tgz"), []byte("archive"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(bundleDir, "runtime"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(bundleDir, "runtime", "node"), []byte("bin"), 0o755))

	b := &builder{
		cfg:       config.Default(),
		bundleDir: bundleDir,
		source: &PackageSource{
			Origin:  SourceLocalBuild,
			Version: "1.4.2",
		},
		runtime: &Runtime{
			Version: version.Semver{Major: 22, Minor: 12, Patch: 0},
			Origin:  RuntimeProvisioned,
		},
	}

	require.NoError(t, b.writeManifest(context.Background()))

	raw, err := os.ReadFile(filepath.Join(bundleDir, ManifestFilename))
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))

	require.Equal(t, "1.4.2", manifest.ToolVersion)
	require.Equal(t, string(SourceLocalBuild), manifest.ToolSource)
	require.Equal(t, "22.12.0", manifest.RuntimeVersion)
	require.Equal(t, string(RuntimeProvisioned), manifest.RuntimeSource)
	require.Equal(t, platformTriple(), manifest.Platform)
	require.NotEmpty(t, manifest.GeneratedAt)

	require.True(t, sort.StringsAreSorted(manifest.Files))
	require.Contains(t, manifest.Files, "openclaw.tgz")
	require.Contains(t, manifest.Files, "runtime/node")

	// The index is taken before the manifest lands on disk.
	require.NotContains(t, manifest.Files, ManifestFilename)

	require.Len(t, manifest.Checksums, len(manifest.Files))
	require.NotEmpty(t, manifest.Checksums["openclaw.tgz"])
}
