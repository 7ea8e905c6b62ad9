// Package runner starts external tools and collects or streams their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"media-grabber/internal/domain"
)

// Command is one tool invocation.
type Command struct {
	Tool domain.ToolBinary
	Args []string
	// Dir is the working directory; empty inherits the current one.
	Dir string
}

// Result captures one completed command.
type Result struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// Runner abstracts process execution for testability.
type Runner interface {
	// Capture runs the command to completion and returns its full output.
	Capture(ctx context.Context, cmd Command) (Result, error)
	// Stream starts the command and returns once it is running.
	Stream(ctx context.Context, cmd Command) (*Process, error)
}

// CommandError reports a failed launch or a non-zero exit.
// It matches domain.ErrToolLaunchFailed or domain.ErrToolExitedNonZero.
type CommandError struct {
	Kind     error
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error returns the tool's stderr verbatim when it exited with output,
// otherwise a short description of the failure.
func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	if errors.Is(e.Kind, domain.ErrToolExitedNonZero) {
		if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
			return stderr
		}
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("failed to start %s", e.Command)
}

// Unwrap exposes the failure kind and the underlying cause.
func (e *CommandError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{e.Kind, e.Err}
}

// ExecRunner executes commands via os/exec.
type ExecRunner struct {
	logger hclog.Logger
}

// NewExecRunner creates a runner that logs each invocation at debug level.
func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{logger: logger}
}

// Capture executes one command and captures stdout/stderr and exit code.
func (r *ExecRunner) Capture(ctx context.Context, c Command) (Result, error) {
	cmd := r.command(ctx, c)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running command", "command", cmd.Path, "args", cmd.Args[1:])
	err := cmd.Run()
	result := Result{
		Command:  c.Tool.Path,
		Args:     c.Args,
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &CommandError{
				Kind:     domain.ErrToolExitedNonZero,
				Command:  c.Tool.Path,
				Args:     c.Args,
				ExitCode: result.ExitCode,
				Stderr:   result.Stderr,
				Err:      err,
			}
		}
		return result, &CommandError{
			Kind:     domain.ErrToolLaunchFailed,
			Command:  c.Tool.Path,
			Args:     c.Args,
			ExitCode: -1,
			Err:      err,
		}
	}

	return result, nil
}

// Stream starts one command with both output streams piped.
func (r *ExecRunner) Stream(ctx context.Context, c Command) (*Process, error) {
	cmd := r.command(ctx, c)
	launchErr := func(err error) error {
		return &CommandError{
			Kind:     domain.ErrToolLaunchFailed,
			Command:  c.Tool.Path,
			Args:     c.Args,
			ExitCode: -1,
			Err:      err,
		}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, launchErr(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, launchErr(err)
	}

	r.logger.Debug("starting command", "command", cmd.Path, "args", cmd.Args[1:], "dir", cmd.Dir)
	if err := cmd.Start(); err != nil {
		return nil, launchErr(err)
	}

	wait := func() error {
		err := cmd.Wait()
		if err == nil {
			return nil
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &CommandError{
			Kind:     domain.ErrToolExitedNonZero,
			Command:  c.Tool.Path,
			Args:     c.Args,
			ExitCode: exitCode,
			Err:      err,
		}
	}

	return NewProcess(stdout, stderr, wait), nil
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	name, argv := c.Tool.Invocation(c.Args)
	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = c.Dir
	return cmd
}
