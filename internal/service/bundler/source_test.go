package bundler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadPackageMeta(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	meta, err := readPackageMeta(dir)
	require.NoError(t, err)
	require.Nil(t, meta)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "package.json"),
		[]byte(`{"name":"openclaw","version":"2.0.1"}`),
		0o644))

	meta, err = readPackageMeta(dir)
	require.NoError(t, err)
	require.Equal(t, "openclaw", meta.Name)
	require.Equal(t, "2.0.1", meta.Version)
}

func TestReadPackageMetaInvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "package.json"), []byte("{"), 0o644))

	_, err := readPackageMeta(dir)
	require.Error(t, err)
}

func TestLocalDistBuilt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.False(t, localDistBuilt(dir))

	distDir := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0o755))

	entry := filepath.Join(distDir, "openclaw.mjs")

	// A zero-length entry file is a stale toolchain leftover, not a build.
	require.NoError(t, os.WriteFile(entry, nil, 0o644))
	require.False(t, localDistBuilt(dir))

	require.NoError(t, os.WriteFile(entry, []byte("export {}\n"), 0o644))
	require.True(t, localDistBuilt(dir))
}

func TestParsePackOutput(t *testing.T) {
	t.Parallel()

	name, err := parsePackOutput("npm notice total files: 12\nopenclaw-1.4.2.tgz\n")
	require.NoError(t, err)
	require.Equal(t, "openclaw-1.4.2.tgz", name)

	name, err = parsePackOutput("openclaw-1.4.2.tgz")
	require.NoError(t, err)
	require.Equal(t, "openclaw-1.4.2.tgz", name)

	_, err = parsePackOutput("  \n\n")
	require.ErrorIs(t, err, errPackNoOutput)
}
