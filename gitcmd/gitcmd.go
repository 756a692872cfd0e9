// Package gitcmd runs git against a single repository via the git CLI.
package gitcmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Error is returned for failed git invocations and carries the captured
// stderr so callers can tell "note does not exist" apart from real failures.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += " (" + e.Stderr + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes git commands in one repository's work dir.
type Runner struct {
	gitPath string
	workDir string
}

// New locates the git executable and binds a runner to workDir.
func New(workDir string) (*Runner, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	return &Runner{gitPath: gitPath, workDir: workDir}, nil
}

// WorkDir returns the repository path the runner is bound to.
func (r *Runner) WorkDir() string {
	return r.workDir
}

func (r *Runner) command(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, r.gitPath, append([]string{"-C", r.workDir}, args...)...)
}

func (r *Runner) wrap(args []string, stderr string, err error) error {
	return &Error{Args: args, Stderr: strings.TrimSpace(stderr), Err: err}
}

// Output runs git and returns its stdout with the trailing newline removed.
func (r *Runner) Output(ctx context.Context, args ...string) (string, error) {
	return r.OutputWithStdin(ctx, "", args...)
}

// OutputWithStdin is Output with the given string fed to git's stdin.
func (r *Runner) OutputWithStdin(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := r.command(ctx, args)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = string(exitErr.Stderr)
		}
		return "", r.wrap(args, stderr, err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// Run runs git for its side effect only.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	cmd := r.command(ctx, args)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return r.wrap(args, string(out), err)
	}
	return nil
}

// StreamLines runs git and hands every stdout line to fn without buffering
// the whole output. The scan buffer is sized for diff lines that carry whole
// mail bodies. A non-nil error from fn stops the stream and is returned.
func (r *Runner) StreamLines(ctx context.Context, fn func(line string) error, args ...string) error {
	cmd := r.command(ctx, args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.wrap(args, "", err)
	}
	if err := cmd.Start(); err != nil {
		return r.wrap(args, "", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var fnErr error
	for scanner.Scan() {
		if fnErr = fn(scanner.Text()); fnErr != nil {
			break
		}
	}
	scanErr := scanner.Err()
	if fnErr != nil || scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if fnErr != nil {
			return fnErr
		}
		return r.wrap(args, stderr.String(), scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return r.wrap(args, stderr.String(), err)
	}
	return nil
}
