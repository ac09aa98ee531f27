package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Result is the captured outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// StderrString returns stderr with surrounding whitespace removed.
func (r Result) StderrString() string {
	return strings.TrimSpace(string(r.Stderr))
}

// Runner executes external commands.
//
// Output captures stdout/stderr and reports a non-zero exit through Result.ExitCode;
// the returned error is only set when the process could not be started at all.
// Run attaches the process to the terminal so it can prompt the operator.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (Result, error)
	Run(ctx context.Context, name string, args ...string) error
}

// CommandRunner runs commands on the local machine, optionally as another user via sudo.
type CommandRunner struct {
	user   string
	env    map[string]string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger hclog.Logger
}

// NewCommandRunner creates a runner. An empty user runs commands as the current user.
func NewCommandRunner(user string, env map[string]string, logger hclog.Logger) *CommandRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CommandRunner{
		user:   user,
		env:    env,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logger,
	}
}

// AsUser returns a copy of the runner that executes commands as user.
func (r *CommandRunner) AsUser(user string) *CommandRunner {
	c := *r
	c.user = user
	return &c
}

// Output runs the command and captures its output.
func (r *CommandRunner) Output(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := r.command(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.Debug("command exited with non-zero status", "command", cmd.String(), "exit_code", res.ExitCode)
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return res, nil
}

// Run executes the command with the terminal attached.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func (r *CommandRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	argv := r.argv(name, args...)
	r.logger.Debug("running command", "argv", strings.Join(argv, " "))
	return exec.CommandContext(ctx, argv[0], argv[1:]...)
}

// argv builds `sudo -u <user> env K=V... name args...` or `env K=V... name args...`.
func (r *CommandRunner) argv(name string, args ...string) []string {
	var argv []string
	if r.user != "" {
		argv = append(argv, "sudo", "-u", r.user)
	}
	if len(r.env) > 0 {
		argv = append(argv, "env")
		argv = append(argv, envPairs(r.env)...)
	}
	argv = append(argv, name)
	return append(argv, args...)
}

func envPairs(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return out
}
