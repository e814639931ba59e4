package validator

import (
	"context"
	"os"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

// matchesTool reports whether a process executable name belongs to the tool.
// Matching is on the base name so wrapper launchers are caught too.
func matchesTool(executable, pkg string) bool {
	name := strings.ToLower(executable)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, ".cmd")

	return name == strings.ToLower(pkg)
}

// sweepStaleProcesses kills leftover tool processes from earlier runs.
// A stale background service would hold the gateway port and make the
// fresh instance look healthy when it is not.
func (c *checker) sweepStaleProcesses(ctx context.Context) {
	processes, err := ps.Processes()
	if err != nil {
		logger.WarnKV(ctx, "Process listing failed, skipping stale sweep", "error", err)

		return
	}

	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() == self || !matchesTool(process.Executable(), c.cfg.PackageName) {
			continue
		}

		proc, err := os.FindProcess(process.Pid())
		if err != nil {
			continue
		}

		if err := proc.Kill(); err != nil {
			logger.WarnKV(ctx, "Failed to kill stale process",
				"pid", process.Pid(), "error", err)

			continue
		}

		logger.InfoKV(ctx, "Killed stale process",
			"pid", process.Pid(), "executable", process.Executable())
	}
}
