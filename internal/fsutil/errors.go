package fsutil

import "errors"

// errNotDirectory is returned when a tree operation is pointed at a file.
var errNotDirectory = errors.New("not a directory")

// errSymlinkCycle is returned when a dereferencing copy meets a directory
// it already entered through a symlink.
var errSymlinkCycle = errors.New("symlink cycle in source tree")
