// Package version exposes build metadata and semantic version handling.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. Helper
// functions Short and Full render the version string for CLI output and logs.
//
// ParseSemver and Semver.Compare implement the three-part numeric version
// comparison used for runtime minimum checks and release tag handling.
package version
