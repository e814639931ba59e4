package bundler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daxiondi/openclaw-desktop/internal/config"
)

// fakeRuntime writes a shell script that reports the given version.
func fakeRuntime(t *testing.T, reported string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}

	script := filepath.Join(t.TempDir(), "node")
	require.NoError(t, os.WriteFile(script,
		[]byte("#!/bin/sh\necho "+reported+"\n"), 0o755))

	return script
}

func TestProbeRuntimeVersion(t *testing.T) {
	t.Parallel()

	b := &builder{cfg: config.Default()}

	reported, err := b.probeRuntimeVersion(context.Background(), fakeRuntime(t, "v22.12.5"))
	require.NoError(t, err)
	require.Equal(t, "22.12.5", reported.String())
}

func TestResolveRuntimeAcceptsSufficientOverride(t *testing.T) {
	t.Parallel()

	b := &builder{
		cfg:  config.Default(),
		opts: &Options{NodeOverride: fakeRuntime(t, "v23.1.0")},
	}

	resolved, err := b.resolveRuntime(context.Background())
	require.NoError(t, err)
	require.Equal(t, RuntimeOverride, resolved.Origin)
	require.Equal(t, "23.1.0", resolved.Version.String())
}

func TestResolveRuntimeRejectsCloseButOldOverride(t *testing.T) {
	t.Parallel()

	// 22.11.9 against a 22.12.0 minimum fails the patch-aware comparison,
	// forcing provisioning, which fails here because the launcher is absent.
	b := &builder{
		cfg:        config.Default(),
		opts:       &Options{NodeOverride: fakeRuntime(t, "v22.11.9")},
		npm:        filepath.Join(t.TempDir(), "absent-npm"),
		scratchDir: t.TempDir(),
	}

	_, err := b.resolveRuntime(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "provision runtime")
}

func TestRuntimeExecutableCandidates(t *testing.T) {
	t.Parallel()

	candidates := runtimeExecutableCandidates("/prefix")
	require.Len(t, candidates, 2)

	if runtime.GOOS != "windows" {
		require.Equal(t, filepath.Join("/prefix", "bin", "node"), candidates[0])
	}
}
