package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/daxiondi/openclaw-desktop/internal/command"
	"github.com/daxiondi/openclaw-desktop/internal/logger"
)

const (
	defaultPollInterval = time.Second
	defaultPollTimeout  = 90 * time.Second
)

// diagnosticTailLimit bounds how much captured output a failure report carries.
const diagnosticTailLimit = 1200

// errGatewayUnreachable is returned when the service never answers within
// the polling window.
var errGatewayUnreachable = errors.New("gateway did not answer before timeout")

// onboardArgs is the scripted non-interactive onboarding invocation,
// parameterized by the auth choice.
func onboardArgs(authChoice string) []string {
	return []string{
		"onboard",
		"--non-interactive",
		"--accept-risk",
		"--mode", "local",
		"--auth-choice", authChoice,
		"--install-daemon",
		"--skip-channels",
		"--skip-skills",
		"--skip-ui",
		"--skip-health",
	}
}

// onboard runs first-run setup non-interactively. The seeded credential is
// offered as the auth source first, with a scripted fallback to skipping
// auth when the tool refuses non-interactive OAuth.
func (c *checker) onboard(ctx context.Context, executable string) error {
	var lastErr error

	for _, choice := range []string{"claude-cli", "skip"} {
		_, err := command.RunChecked(ctx, c.toolInvocation(executable, onboardArgs(choice)...))
		if err == nil {
			logger.InfoKV(ctx, "Onboarding completed", "auth_choice", choice)

			return nil
		}

		lastErr = err

		logger.WarnKV(ctx, "Onboarding attempt failed",
			"auth_choice", choice, "error", err)
	}

	return fmt.Errorf("onboard: %w", lastErr)
}

// gateway is the background service child with captured output streams.
type gateway struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// startGateway launches the tool's local service in the background.
func (c *checker) startGateway(ctx context.Context, executable string) (*gateway, error) {
	spec := c.toolInvocation(executable,
		"gateway", "run",
		"--allow-unconfigured",
		"--port", strconv.Itoa(c.cfg.GatewayPort))

	g := &gateway{}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Env = spec.Env
	cmd.Stdout = &g.stdout
	cmd.Stderr = &g.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start gateway: %w", err)
	}

	g.cmd = cmd

	logger.InfoKV(ctx, "Gateway started",
		"pid", cmd.Process.Pid,
		"port", c.cfg.GatewayPort)

	return g, nil
}

// stop terminates the service child and reaps it. Safe to call after the
// child already exited.
func (g *gateway) stop() {
	if g.cmd == nil || g.cmd.Process == nil {
		return
	}

	_ = g.cmd.Process.Kill()
	_ = g.cmd.Wait()
}

// diagnostic renders a multi-line failure report with the child's exit
// state and the tails of its captured streams.
func (g *gateway) diagnostic() string {
	var report strings.Builder

	report.WriteString("gateway did not become reachable\n")

	if g.cmd != nil && g.cmd.ProcessState != nil {
		fmt.Fprintf(&report, "child state: exited with code %d\n", g.cmd.ProcessState.ExitCode())
	} else {
		report.WriteString("child state: still running\n")
	}

	if tail := command.Tail(g.stdout.String(), diagnosticTailLimit); tail != "" {
		report.WriteString("stdout tail:\n" + tail + "\n")
	}

	if tail := command.Tail(g.stderr.String(), diagnosticTailLimit); tail != "" {
		report.WriteString("stderr tail:\n" + tail + "\n")
	}

	return strings.TrimRight(report.String(), "\n")
}

// waitReachable polls the service endpoint until any HTTP answer arrives
// or the timeout elapses. The client bypasses proxies, the poll target is
// loopback and the process environment deliberately points proxies at an
// unreachable address.
func (c *checker) waitReachable(ctx context.Context, url string) error {
	client := &http.Client{
		Timeout:   c.pollInterval,
		Transport: &http.Transport{Proxy: nil},
	}

	deadline := time.Now().Add(c.pollTimeout)

	for {
		response, err := client.Get(url)
		if err == nil {
			_ = response.Body.Close()

			logger.InfoKV(ctx, "Gateway reachable",
				"url", url, "status", response.StatusCode)

			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", url, errGatewayUnreachable)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}
