package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// CopyOptions controls how CopyTree mirrors a directory.
type CopyOptions struct {
	// DereferenceSymlinks copies the link target's content instead of the
	// link itself. Installed prefixes commonly contain absolute symlinks
	// into build-host caches; dereferencing keeps the copy self-contained.
	DereferenceSymlinks bool
	// Skip, when non-nil, is called with the slash-separated relative path
	// of every entry; returning true omits the entry and its subtree.
	Skip func(rel string) bool
}

// defaultDirPermissions is used for directories created while copying.
const defaultDirPermissions os.FileMode = 0o755

// RecreateDir removes the directory and everything below it, then creates it
// empty. This is what gives a bundle build its re-run safety: no partial
// state from a previous run survives.
func RecreateDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	if err := os.MkdirAll(path, defaultDirPermissions); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	return nil
}

// CopyTree mirrors src into dst. The destination directory is created if
// needed; existing destination entries are overwritten.
func CopyTree(src, dst string, opts CopyOptions) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("copy %s: %w", src, errNotDirectory)
	}

	visited := make(map[string]bool)

	if real, err := filepath.EvalSymlinks(src); err == nil {
		visited[real] = true
	}

	return copyDir(src, dst, "", opts, visited)
}

// copyDir copies one directory level and recurses into subdirectories.
// visited holds the resolved paths of directories already entered through
// a symlink, so a link cycle in the source fails instead of recursing
// forever.
func copyDir(src, dst, rel string, opts CopyOptions, visited map[string]bool) error {
	if err := os.MkdirAll(dst, defaultDirPermissions); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = rel + "/" + entry.Name()
		}

		if opts.Skip != nil && opts.Skip(entryRel) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if err := copyEntry(srcPath, dstPath, entryRel, entry, opts, visited); err != nil {
			return err
		}
	}

	return nil
}

// copyEntry dispatches one directory entry by type.
func copyEntry(srcPath, dstPath, rel string, entry fs.DirEntry, opts CopyOptions, visited map[string]bool) error {
	if entry.Type()&os.ModeSymlink != 0 {
		if !opts.DereferenceSymlinks {
			target, err := os.Readlink(srcPath)
			if err != nil {
				return fmt.Errorf("read link %s: %w", srcPath, err)
			}

			_ = os.Remove(dstPath)

			if err := os.Symlink(target, dstPath); err != nil {
				return fmt.Errorf("create link %s: %w", dstPath, err)
			}

			return nil
		}

		resolved, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("resolve link %s: %w", srcPath, err)
		}

		if resolved.IsDir() {
			real, err := filepath.EvalSymlinks(srcPath)
			if err != nil {
				return fmt.Errorf("resolve link %s: %w", srcPath, err)
			}

			if visited[real] {
				return fmt.Errorf("%s: %w", srcPath, errSymlinkCycle)
			}

			visited[real] = true

			return copyDir(srcPath, dstPath, rel, opts, visited)
		}

		return copyFileWithMode(srcPath, dstPath, resolved.Mode().Perm())
	}

	if entry.IsDir() {
		return copyDir(srcPath, dstPath, rel, opts, visited)
	}

	info, err := entry.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	return copyFileWithMode(srcPath, dstPath, info.Mode().Perm())
}

// CopyFile copies a single regular file preserving its permission bits.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	return copyFileWithMode(src, dst, info.Mode().Perm())
}

func copyFileWithMode(src, dst string, perm os.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s: %w", dst, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return nil
}

// MakeTreeWritable adds the user-writable bit to every file and directory
// below root. Archive extraction can preserve read-only permission bits from
// the source registry, which would break a later re-build that overwrites
// files in place.
//
// The traversal is iterative over an owned queue rather than recursive, so
// pathologically deep trees cannot exhaust the stack, and the visit order
// (breadth-first, directory entries in name order) is deterministic.
func MakeTreeWritable(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return chmodAdd(root, info, 0o200)
	}

	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		dirInfo, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("stat %s: %w", dir, err)
		}

		// The directory itself first, so its entries can be listed and
		// later overwritten.
		if err := chmodAdd(dir, dirInfo, 0o300); err != nil {
			return err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				queue = append(queue, path)
				continue
			}

			// Leave symlinks alone; their targets are visited on their own.
			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}

			entryInfo, err := entry.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			if err := chmodAdd(path, entryInfo, 0o200); err != nil {
				return err
			}
		}
	}

	return nil
}

// chmodAdd adds permission bits to a path unless they are already present.
func chmodAdd(path string, info fs.FileInfo, bits os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	perm := info.Mode().Perm()
	if perm&bits == bits {
		return nil
	}

	if err := os.Chmod(path, perm|bits); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	return nil
}

// EnsureExecutable sets the executable bits on a file. Archive transport can
// strip them from binaries on POSIX-like systems.
func EnsureExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	return chmodAdd(path, info, 0o111)
}

// FileIndex returns the sorted slash-separated relative paths of every
// regular file below root.
func FileIndex(root string) ([]string, error) {
	var index []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		index = append(index, strings.ReplaceAll(rel, string(filepath.Separator), "/"))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", root, err)
	}

	sort.Strings(index)

	return index, nil
}
