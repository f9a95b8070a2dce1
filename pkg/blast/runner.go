package blast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ToolError is returned when an external program exits unsuccessfully.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Runner runs an external program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs programs with os/exec. Stderr is always captured for
// ToolError; Log, when set, also receives stdout and stderr.
type ExecRunner struct {
	Log io.Writer
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	// Children of a killed BLAST process may hold the pipes open.
	cmd.WaitDelay = 5 * time.Second

	var stderr bytes.Buffer
	if r.Log != nil {
		cmd.Stdout = r.Log
		cmd.Stderr = io.MultiWriter(&stderr, r.Log)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ToolError{
			Tool:     name,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return nil
}
