// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"syscall"

	"github.com/matt-FFFFFF/xe/internal/status"
)

var (
	// ErrCommandNotFound is returned when the command of a job does not exist.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
)

// ExitStatus is how a process ended.
type ExitStatus struct {
	Code     int            // exit code, meaningful when Signaled is false
	Signaled bool           // the process was terminated by a signal
	Signal   syscall.Signal // the terminating signal
}

// String implements fmt.Stringer.
func (s ExitStatus) String() string {
	if s.Signaled {
		return fmt.Sprintf("signal %d", int(s.Signal))
	}

	return fmt.Sprintf("exit %d", s.Code)
}

// Process is a started child process.
type Process interface {
	// Pid returns the process identifier.
	Pid() int
	// Wait blocks until the process has exited.
	Wait() (ExitStatus, error)
}

// SpawnRequest describes a process to start.
type SpawnRequest struct {
	Argv   []string
	Env    []string
	Stdin  io.Reader // nil reads from the null device
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner starts processes.
type Spawner interface {
	Spawn(req SpawnRequest) (Process, error)
}

var _ Spawner = OSSpawner{}

// OSSpawner starts operating system processes, searching PATH for the
// command like execvp does.
type OSSpawner struct{}

// Spawn implements Spawner.
func (OSSpawner) Spawn(req SpawnRequest) (Process, error) {
	if len(req.Argv) == 0 {
		return nil, ErrCouldNotStartProcess
	}

	cmd := exec.Command(req.Argv[0], req.Argv[1:]...) //nolint:gosec
	cmd.Env = req.Env
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrCommandNotFound, err)
		}

		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	return &osProcess{cmd: cmd}, nil
}

type osProcess struct {
	cmd *exec.Cmd
}

func (p *osProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()

	state := p.cmd.ProcessState
	if state == nil {
		return ExitStatus{}, err //nolint:wrapcheck
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		err = nil
	}

	st := ExitStatus{Code: state.ExitCode()}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		st.Signaled = true
		st.Signal = ws.Signal()
	}

	return st, err //nolint:wrapcheck
}

// SpawnStatus returns the driver exit status for an error from Spawn.
func SpawnStatus(err error) int {
	if errors.Is(err, ErrCommandNotFound) {
		return status.NotFound
	}

	return status.CannotInvoke
}
