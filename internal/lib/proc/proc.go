package proc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ImSingee/mozinstall/internal/lib/shells"
)

type Result struct {
	Output []byte

	ExitCode   int
	ExitErr    *exec.ExitError
	UnknownErr error
}

func (r *Result) Err() error {
	if r.ExitErr != nil {
		stderr := strings.TrimSpace(string(r.ExitErr.Stderr))
		if stderr == "" {
			return r.ExitErr
		}
		return fmt.Errorf("%s: %s", r.ExitErr.Error(), stderr)
	}

	if r.UnknownErr != nil {
		return r.UnknownErr
	}

	return nil
}

// Runner runs a command synchronously and waits for it to exit
type Runner interface {
	Run(ctx context.Context, name string, args ...string) *Result
}

type Exec struct {
	Dir string
	Env []string
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) *Result {
	slog.Debug("run command", "cmd", shells.Join(append([]string{name}, args...)), "dir", e.Dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Env = e.Env
	output, err := cmd.Output()

	result := &Result{
		Output: output,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.ExitErr = exitErr
		} else {
			result.ExitCode = -1
			result.UnknownErr = err
		}
	}

	slog.Debug("command finished", "cmd", name, "exitCode", result.ExitCode)

	return result
}

var Default Runner = &Exec{}
