// Package spawner runs the shell commands a job orchestrator hands it,
// generalizing the worker-loop subprocess handling of the teacher's
// build.Worker down to the single-command-at-a-time interface the core
// needs: launch, capture output, report status, optionally short-circuit
// with a skip placeholder when the caller has already decided the command
// need not run.
package spawner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Outcome is the result of one command invocation (or a skip placeholder).
type Outcome struct {
	Success bool
	Skipped bool
	Output  string
}

// Spawner executes a shell command in cwd. When skip is true the
// implementation must not launch anything and instead return a synthetic
// successful, skipped Outcome — this is the "has_skip_info" placeholder the
// build coordinator relies on in step 5 of the build algorithm.
type Spawner interface {
	Run(ctx context.Context, command, cwd string, skip bool) (Outcome, error)
}

// SpawnError reports that the command itself could not be launched (a
// SpawnFailure, as distinct from the command launching and exiting non-zero,
// which is a BuildFailure folded into Outcome.Success).
type SpawnError struct {
	Command string
	Cwd     string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q in %s: %v", e.Command, e.Cwd, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Process is the real Spawner: it shells out via /bin/sh -c, mirroring the
// teacher's buildPackage invocations, and puts each child in its own
// process group (golang.org/x/sys/unix) so a cancelled context can kill the
// whole subtree instead of leaking grandchildren, replacing the teacher's
// BSD jail/mount isolation with plain process-group isolation.
type Process struct {
	Shell string
}

// NewProcess returns a Process spawner using /bin/sh as the command shell.
func NewProcess() *Process {
	return &Process{Shell: "/bin/sh"}
}

func (p *Process) Run(ctx context.Context, command, cwd string, skip bool) (Outcome, error) {
	if skip {
		return Outcome{Success: true, Skipped: true}, nil
	}

	shell := p.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return Outcome{}, &SpawnError{Command: command, Cwd: cwd, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killGroup(cmd.Process.Pid)
		<-done
		return Outcome{Success: false, Output: out.String()}, ctx.Err()
	case err := <-done:
		if err != nil {
			if _, ok := err.(*exec.ExitError); ok {
				// Non-zero exit: a BuildFailure, not a SpawnFailure.
				return Outcome{Success: false, Output: out.String()}, nil
			}
			return Outcome{}, &SpawnError{Command: command, Cwd: cwd, Err: err}
		}
		return Outcome{Success: true, Output: out.String()}, nil
	}
}

// killGroup sends SIGKILL to the process group rooted at pid, logging
// nothing: a failed kill on an already-dead group is expected, not an error.
func killGroup(pid int) {
	_ = unix.Kill(-pid, syscall.SIGKILL)
}
