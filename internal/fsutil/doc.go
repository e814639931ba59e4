// Package fsutil provides the filesystem primitives shared by the bundle
// pipeline: recreate-empty semantics for output directories, recursive tree
// copies with optional symlink dereferencing, an iterative make-everything-
// writable pass, and relative file indexing for manifests.
package fsutil
