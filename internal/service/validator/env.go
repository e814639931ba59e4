package validator

import (
	"runtime"
	"strings"
)

// unreachableProxy is where all proxy traffic is pointed during validation.
// Any accidental outbound call fails fast instead of silently using the
// network, which would mask a broken offline bundle.
const unreachableProxy = "http://127.0.0.1:9"

// proxyVariables are the environment variables honored by the tool, the
// runtime and the package manager for outbound HTTP.
var proxyVariables = []string{
	"HTTP_PROXY", "HTTPS_PROXY", "ALL_PROXY",
	"http_proxy", "https_proxy", "all_proxy",
}

// homeVariable is the variable the tool resolves its home directory from.
func homeVariable() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}

	return "HOME"
}

// offlineEnv builds the child process environment for validation runs:
// the home directory is redirected to the ephemeral home and every proxy
// variable points at an unreachable address.
func offlineEnv(base []string, homeDir string) []string {
	drop := map[string]bool{
		strings.ToLower(homeVariable()): true,
		"no_proxy":                      true,
	}

	for _, name := range proxyVariables {
		drop[strings.ToLower(name)] = true
	}

	out := make([]string, 0, len(base)+len(proxyVariables)+1)

	for _, entry := range base {
		key, _, ok := strings.Cut(entry, "=")
		if ok && drop[strings.ToLower(key)] {
			continue
		}

		out = append(out, entry)
	}

	out = append(out, homeVariable()+"="+homeDir)

	for _, name := range proxyVariables {
		out = append(out, name+"="+unreachableProxy)
	}

	return out
}

