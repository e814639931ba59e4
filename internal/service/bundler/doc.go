// Package bundler builds self-contained offline bundles of the tool.
//
// A bundle owns one directory holding the packed tool archive, a runtime
// executable, the package manager's client tree, a warmed offline install
// cache and a verified installed-prefix snapshot, plus a manifest
// describing all of it. Building is re-run safe, the bundle directory is
// recreated from scratch on every run.
package bundler
