// Package system executes external commands for bootstrap handlers.
// Commands inherit the process stdout and stderr so their output flows
// through whatever redirection the log pipe has installed.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Runner executes external commands with a shared extra environment.
type Runner struct {
	// Env holds KEY=VALUE pairs appended to the parent environment for
	// every command. Used for things like DEBIAN_FRONTEND.
	Env []string

	// Dir is the working directory for commands. Empty means the
	// current directory of the process.
	Dir string
}

// NewRunner creates a runner with no extra environment.
func NewRunner() *Runner {
	return &Runner{}
}

// WithEnv returns a copy of the runner with additional environment
// entries appended.
func (r *Runner) WithEnv(pairs ...string) *Runner {
	next := *r
	next.Env = append(append([]string(nil), r.Env...), pairs...)
	return &next
}

// WithDir returns a copy of the runner with the working directory set.
func (r *Runner) WithDir(dir string) *Runner {
	next := *r
	next.Dir = dir
	return &next
}

func (r *Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

// Run executes a command and waits for it. Stdout and stderr are
// inherited from the process.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	log.Debug().Str("command", name).Strs("args", args).Msg("Running command")
	cmd := r.command(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Output executes a command and returns its trimmed standard output.
// Stderr is inherited from the process.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	log.Debug().Str("command", name).Strs("args", args).Msg("Running command for output")
	cmd := r.command(ctx, name, args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Quiet executes a command and discards its output. Used for probes
// whose only interesting result is the exit status.
func (r *Runner) Quiet(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// LookPath reports whether a binary is available on PATH.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
