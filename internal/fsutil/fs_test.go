package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRecreateDir ensures pre-existing contents are discarded.
func TestRecreateDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stale"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale", "leftover.txt"), []byte("x"), 0o644))

	require.NoError(t, RecreateDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestCopyTreeDereferencesSymlinks checks that a symlinked file is copied as
// real content, so the copy stays valid off the build host.
func TestCopyTreeDereferencesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	t.Parallel()

	src := t.TempDir()
	external := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(external, "real.txt"), []byte("payload"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(external, "real.txt"), filepath.Join(src, "nested", "link.txt")))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(src, dst, CopyOptions{DereferenceSymlinks: true}))

	copied := filepath.Join(dst, "nested", "link.txt")

	info, err := os.Lstat(copied)
	require.NoError(t, err)
	require.Zero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

// TestCopyTreeSkip filters entries by relative path.
func TestCopyTreeSkip(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, ".npmrc"), []byte("registry=..."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.txt"), []byte("keep"), 0o644))

	dst := filepath.Join(t.TempDir(), "copy")
	err := CopyTree(src, dst, CopyOptions{
		Skip: func(rel string) bool { return rel == ".npmrc" },
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, "keep.txt"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, ".npmrc"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestMakeTreeWritable restores the user-writable bit on read-only entries.
func TestMakeTreeWritable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	file := filepath.Join(nested, "locked.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(file, 0o444))
	require.NoError(t, os.Chmod(nested, 0o555))

	require.NoError(t, MakeTreeWritable(root))

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o200)

	dirInfo, err := os.Stat(nested)
	require.NoError(t, err)
	require.NotZero(t, dirInfo.Mode().Perm()&0o300)
}

// TestEnsureExecutable adds executable bits to a plain file.
func TestEnsureExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	t.Parallel()

	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))
	require.NoError(t, EnsureExecutable(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o111)
}

// TestFileIndex lists regular files as sorted slash-relative paths.
func TestFileIndex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	index, err := FileIndex(root)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "sub/b.txt"}, index)
}

// TestCopyTreeDetectsSymlinkCycle ensures a dereferencing copy fails on a
// link cycle instead of recursing forever.
func TestCopyTreeDetectsSymlinkCycle(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	src := t.TempDir()
	nested := filepath.Join(src, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "file.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(src, filepath.Join(nested, "loop")))

	err := CopyTree(src, filepath.Join(t.TempDir(), "dst"),
		CopyOptions{DereferenceSymlinks: true})
	require.ErrorIs(t, err, errSymlinkCycle)

	// Without dereferencing, the cycle is copied as a plain link.
	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, CopyTree(src, dst, CopyOptions{}))

	target, err := os.Readlink(filepath.Join(dst, "nested", "loop"))
	require.NoError(t, err)
	require.Equal(t, src, target)
}
