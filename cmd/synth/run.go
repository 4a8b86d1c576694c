package synth

import (
	"context"
	"os"
	"os/exec"

	"go-synth/internal/target"
)

// runBinary executes t's run command with inherited stdio, used by the
// `run` job after SuspendAndRun has hidden the tracker's bars — mirroring
// the original Tracker::suspend_and_run, which exists precisely so a
// foreground subprocess (here, the built binary) can own the terminal.
func runBinary(ctx context.Context, root string, t target.Name) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", t.RunCmd())
	cmd.Dir = t.Cwd(root)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
