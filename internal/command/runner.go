package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Spec describes one external command invocation.
type Spec struct {
	// Name is the executable to run, resolved via the process search path
	// unless it contains a path separator.
	Name string
	// Args are the command arguments, not including the executable name.
	Args []string
	// Dir is the working directory; empty means the caller's directory.
	Dir string
	// Env is the full process environment; nil inherits the caller's.
	Env []string
	// Timeout bounds the invocation; zero means no per-command deadline.
	Timeout time.Duration
}

// Result captures the outcome of a finished command.
type Result struct {
	// ExitCode is the process exit status.
	ExitCode int
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
}

// ExitError reports a command that started but exited non-zero.
// It carries the command line and both captured streams so callers never
// need to re-run a failed tool to see what went wrong.
type ExitError struct {
	// Command is the rendered command line for diagnostics.
	Command string
	// Result holds the exit code and captured output of the failed run.
	Result Result
}

// Error renders the command, exit code and a clipped tail of both streams.
func (e *ExitError) Error() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s: exit code %d", e.Command, e.Result.ExitCode)

	if tail := Tail(e.Result.Stdout, tailLimit); tail != "" {
		builder.WriteString("\nstdout: ")
		builder.WriteString(tail)
	}

	if tail := Tail(e.Result.Stderr, tailLimit); tail != "" {
		builder.WriteString("\nstderr: ")
		builder.WriteString(tail)
	}

	return builder.String()
}

// tailLimit is the maximum number of characters of a stream kept in messages.
const tailLimit = 1200

// errEmptyCommand is returned when a Spec has no executable name.
var errEmptyCommand = errors.New("command name must be provided")

// Run executes the command and captures both output streams.
// A non-zero exit is not an error here; it is reported through the Result so
// callers that expect failures (version probes) can branch on the exit code.
// The returned error is non-nil only when the process could not be started.
func Run(ctx context.Context, spec Spec) (Result, error) {
	if spec.Name == "" {
		return Result{}, errEmptyCommand
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("start %s: %w", Render(spec), err)
}

// RunChecked executes the command and converts a non-zero exit into an
// *ExitError carrying the command line and both captured streams.
func RunChecked(ctx context.Context, spec Spec) (Result, error) {
	result, err := Run(ctx, spec)
	if err != nil {
		return result, err
	}

	if result.ExitCode != 0 {
		return result, &ExitError{
			Command: Render(spec),
			Result:  result,
		}
	}

	return result, nil
}

// Render returns the command line as a single diagnostic string.
func Render(spec Spec) string {
	if len(spec.Args) == 0 {
		return spec.Name
	}

	return spec.Name + " " + strings.Join(spec.Args, " ")
}

// Combined joins the trimmed stdout and stderr of a result for diagnostics,
// clipped to a bounded tail.
func (r Result) Combined() string {
	parts := make([]string, 0, 2)

	if out := strings.TrimSpace(r.Stdout); out != "" {
		parts = append(parts, out)
	}

	if errOut := strings.TrimSpace(r.Stderr); errOut != "" {
		parts = append(parts, errOut)
	}

	return Tail(strings.Join(parts, "\n"), tailLimit)
}

// Tail returns at most limit trailing characters of the trimmed text,
// prefixed with a truncation marker when clipping occurred.
func Tail(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}

	return "...(truncated) " + trimmed[len(trimmed)-limit:]
}

// PrependPath returns a copy of env with dir prepended to the executable
// search path variable, adding the variable if it is absent.
func PrependPath(env []string, dir string) []string {
	out := make([]string, 0, len(env)+1)
	found := false

	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if ok && strings.EqualFold(key, "PATH") {
			out = append(out, key+"="+dir+string(os.PathListSeparator)+value)
			found = true

			continue
		}

		out = append(out, entry)
	}

	if !found {
		out = append(out, "PATH="+dir)
	}

	return out
}
