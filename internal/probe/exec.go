package probe

import (
	"context"
	"errors"
	"os/exec"
	"runtime"

	"github.com/go-logr/logr"
)

const defaultCommand = "ping"

// Exec probes with the system ping utility, one echo request, and reports
// alive iff it exits 0.
type Exec struct {
	command string
	log     logr.Logger
}

func NewExec(command string, log logr.Logger) *Exec {
	if command == "" {
		command = defaultCommand
	}
	return &Exec{command: command, log: log}
}

func (e *Exec) Alive(ctx context.Context, address string) bool {
	cmd := exec.CommandContext(ctx, e.command, countFlag(), "1", address)
	err := cmd.Run()
	if err == nil {
		return true
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.log.V(1).Info("no reply", "address", address, "exitCode", exitErr.ExitCode())
		return false
	}

	if ctx.Err() != nil {
		e.log.V(1).Info("probe interrupted", "address", address)
		return false
	}
	e.log.Error(err, "probe could not be run", "command", e.command, "address", address)
	return false
}

func countFlag() string {
	if runtime.GOOS == "windows" {
		return "-n"
	}
	return "-c"
}
