package scheduler

import (
	"context"
	"errors"
	"os/exec"
)

// CommandRunner spawns a subprocess and waits for it to complete. exitCode
// is only meaningful when err is nil or an *exec.ExitError-equivalent
// (i.e. the process started and ran to completion); any other error means
// the process could not be spawned or awaited (spec §7's
// "subprocess spawn/wait failure").
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) (exitCode int, err error)
}

// execRunner runs commands with os/exec. Cancelling ctx kills the child
// process, satisfying the kill-on-drop contract of spec §4.F.
type execRunner struct{}

// NewExecRunner returns the production CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
