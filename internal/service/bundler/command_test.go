package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daxiondi/openclaw-desktop/internal/config"
)

// fakePackTool writes a shell script that mimics the pack command by
// copying a prepared archive into the destination directory.
func fakePackTool(t *testing.T, archive, scratchDir, archiveName string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}

	script := filepath.Join(t.TempDir(), "npm")
	body := fmt.Sprintf("#!/bin/sh\ncp %q %q\necho %q\n",
		archive, filepath.Join(scratchDir, archiveName), archiveName)
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	return script
}

func TestPackRegistry(t *testing.T) {
	t.Parallel()

	archive := writeTestArchive(t, map[string]string{
		"package/package.json": `{"name":"openclaw","version":"1.4.2"}`,
	})

	scratchDir := t.TempDir()

	b := &builder{
		cfg:        config.Default(),
		opts:       &Options{},
		npm:        fakePackTool(t, archive, scratchDir, "openclaw-1.4.2.tgz"),
		scratchDir: scratchDir,
	}

	source, err := b.packRegistry(context.Background(), "openclaw@latest")
	require.NoError(t, err)
	require.Equal(t, SourceRegistry, source.Origin)
	require.Equal(t, "1.4.2", source.Version)
	require.FileExists(t, source.ArchivePath)
}

func TestResolveSourcePrefersLocalBuild(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(sourceDir, "package.json"),
		[]byte(`{"name":"openclaw","version":"1.4.2"}`),
		0o644))

	distDir := filepath.Join(sourceDir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(distDir, "openclaw.mjs"), []byte("export {}\n"), 0o644))

	archive := writeTestArchive(t, map[string]string{
		"package/package.json": `{"name":"openclaw","version":"1.4.2"}`,
	})

	scratchDir := t.TempDir()

	cfg := config.Default()
	cfg.SourceDir = sourceDir

	b := &builder{
		cfg:        cfg,
		opts:       &Options{},
		npm:        fakePackTool(t, archive, scratchDir, "openclaw-1.4.2.tgz"),
		scratchDir: scratchDir,
	}

	source, err := b.resolveSource(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceLocalBuild, source.Origin)
	require.Equal(t, "1.4.2", source.Version)
}

func TestResolveSourceRejectsVersionDrift(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(sourceDir, "package.json"),
		[]byte(`{"name":"openclaw","version":"9.9.9"}`),
		0o644))

	distDir := filepath.Join(sourceDir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(distDir, "index.js"), []byte("module.exports = {}\n"), 0o644))

	archive := writeTestArchive(t, map[string]string{
		"package/package.json": `{"name":"openclaw","version":"1.4.2"}`,
	})

	scratchDir := t.TempDir()

	cfg := config.Default()
	cfg.SourceDir = sourceDir

	b := &builder{
		cfg:        cfg,
		opts:       &Options{},
		npm:        fakePackTool(t, archive, scratchDir, "openclaw-1.4.2.tgz"),
		scratchDir: scratchDir,
	}

	_, err := b.resolveSource(context.Background())
	require.ErrorIs(t, err, errVersionMismatch)
}

func TestRunSkipPrep(t *testing.T) {
	t.Parallel()

	require.NoError(t, Run(context.Background(), &Options{SkipPrep: true}))
}
