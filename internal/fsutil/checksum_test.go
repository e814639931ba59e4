package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileChecksum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	first, err := FileChecksum(path)
	require.NoError(t, err)
	require.Len(t, first, ChecksumFunction.Size())

	second, err := FileChecksum(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

	third, err := FileChecksum(path)
	require.NoError(t, err)
	require.NotEqual(t, first, third)
}

func TestTreeChecksums(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("b"), 0o644))

	checksums, err := TreeChecksums(dir)
	require.NoError(t, err)
	require.Len(t, checksums, 2)
	require.Contains(t, checksums, "a.txt")
	require.Contains(t, checksums, "nested/b.txt")
	require.NotEqual(t, checksums["a.txt"], checksums["nested/b.txt"])
}
