package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Result holds the outcome of a single ffmpeg invocation. Stderr is retained
// even on success so callers can surface encoder warnings.
type Result struct {
	Stderr string
	Err    error
}

// Runner executes an ffmpeg binary. The zero value is not usable; construct
// with NewRunner.
type Runner struct {
	binary string
	run    func(ctx context.Context, binary string, args []string) Result
}

// NewRunner returns a Runner for the given ffmpeg binary.
func NewRunner(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{binary: binary, run: execute}
}

// Binary returns the configured ffmpeg binary.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with the provided arguments, blocking until the
// process exits or the context is cancelled.
func (r *Runner) Run(ctx context.Context, args ...string) Result {
	return r.run(ctx, r.binary, args)
}

// SetRunFunc replaces the process launcher. Test hook.
func (r *Runner) SetRunFunc(fn func(ctx context.Context, binary string, args []string) Result) {
	if fn != nil {
		r.run = fn
	}
}

func execute(ctx context.Context, binary string, args []string) Result {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return Result{Stderr: stderr.String(), Err: err}
}

// TailLines returns the last n lines of stderr output for log reporting.
func TailLines(stderr string, n int) []string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
