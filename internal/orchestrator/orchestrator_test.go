package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go-synth/internal/checksum"
	"go-synth/internal/dlog"
	"go-synth/internal/spawner"
	"go-synth/internal/target"
	"go-synth/internal/tracker"
)

// newTestOrchestrator builds an Orchestrator over a fresh temp root with a
// Mock spawner and a real *tracker.Tracker from tracker.New(), which falls
// back to the stdout backend under `go test` (not a TTY) and is safe to
// drive concurrently.
func newTestOrchestrator(t *testing.T, prod bool) (*Orchestrator, *spawner.Mock, string) {
	t.Helper()
	checksum.Reset()
	root := t.TempDir()
	for _, n := range target.All() {
		if err := os.MkdirAll(n.Cwd(root), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	mock := spawner.NewMock()
	tr := tracker.New()
	t.Cleanup(tr.Shutdown)

	orch, err := New(root, prod, mock, tr, dlog.NoOpLogger{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return orch, mock, root
}

func TestBuildFreshTargetProducesInstallAndBuild(t *testing.T) {
	orch, mock, _ := newTestOrchestrator(t, false)

	result := orch.Build(context.Background(), target.Shared, false)
	if !result.Success() {
		t.Fatalf("build failed: %+v", result)
	}
	if result.Skipped {
		t.Fatal("fresh build should not be skipped")
	}
	if mock.CallCount(target.Shared.BuildCmd(false)) != 1 {
		t.Fatal("expected exactly one build invocation")
	}
	if mock.CallCount(target.Shared.InstallCmd(false)) != 1 {
		t.Fatal("expected exactly one install invocation")
	}

	if err := orch.Checksum().Persist(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(orch.Root, ".synth", "checksums-dev.txt")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected checksum file: %v", err)
	}
}

func TestSecondBuildIsSkipped(t *testing.T) {
	orch, mock, root := newTestOrchestrator(t, false)

	first := orch.Build(context.Background(), target.Shared, false)
	if !first.Success() {
		t.Fatalf("first build failed: %+v", first)
	}
	if err := orch.Checksum().Persist(); err != nil {
		t.Fatal(err)
	}

	checksum.Reset()
	mock2 := spawner.NewMock()
	tr := tracker.New()
	t.Cleanup(tr.Shutdown)
	orch2, err := New(root, false, mock2, tr, dlog.NoOpLogger{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	second := orch2.Build(context.Background(), target.Shared, false)
	if !second.Success() {
		t.Fatalf("second build failed: %+v", second)
	}
	if !second.Skipped {
		t.Fatal("second build with no source changes should be skipped")
	}
	if mock2.CallCount(target.Shared.BuildCmd(false)) != 1 {
		t.Fatal("skip still invokes the spawner, with skip=true")
	}
	_ = mock
}

func TestBuildWrapperOrdersDependencies(t *testing.T) {
	orch, mock, root := newTestOrchestrator(t, false)

	result := orch.Build(context.Background(), target.Wrapper, false)
	if !result.Success() {
		t.Fatalf("build failed: %+v", result)
	}

	// Shared and Wrapper share the transpiled build command, so build calls
	// are matched by command and working directory.
	pos := map[target.Name]int{}
	for _, n := range []target.Name{target.Shared, target.Binding, target.Wrapper} {
		count := 0
		for i, c := range mock.Calls {
			if c.Command == n.BuildCmd(false) && c.Cwd == n.Cwd(root) {
				count++
				pos[n] = i
			}
		}
		if count != 1 {
			t.Errorf("%s build invoked %d times, want 1", n, count)
		}
	}
	if !(pos[target.Shared] < pos[target.Binding] && pos[target.Binding] < pos[target.Wrapper]) {
		t.Errorf("build call positions = %v, want Shared before Binding before Wrapper", pos)
	}
}

func TestConcurrentBuildInvokesOnce(t *testing.T) {
	orch, mock, root := newTestOrchestrator(t, false)

	const n = 8
	results := make([]Result, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = orch.Build(context.Background(), target.App, false)
		}()
	}
	wg.Wait()

	for i, r := range results {
		if !r.Success() {
			t.Errorf("results[%d] failed: %+v", i, r)
		}
		if r.Status != results[0].Status {
			t.Errorf("results[%d].Status = %v, want %v", i, r.Status, results[0].Status)
		}
	}
	// App shares its build command with the other transpiled targets, so
	// only calls in App's own directory are counted.
	appBuilds := 0
	for _, c := range mock.Calls {
		if c.Command == target.App.BuildCmd(false) && c.Cwd == target.App.Cwd(root) {
			appBuilds++
		}
	}
	if appBuilds != 1 {
		t.Fatalf("App build invoked %d times, want 1", appBuilds)
	}
}

func TestResetForcesRebuild(t *testing.T) {
	orch, mock, _ := newTestOrchestrator(t, false)

	if r := orch.Build(context.Background(), target.Core, false); !r.Success() {
		t.Fatalf("build failed: %+v", r)
	}
	if err := orch.Checksum().Persist(); err != nil {
		t.Fatal(err)
	}

	if r := orch.Reset(target.Core); !r.Success() {
		t.Fatalf("reset failed: %+v", r)
	}

	second := orch.Build(context.Background(), target.Core, false)
	if !second.Success() {
		t.Fatalf("post-reset build failed: %+v", second)
	}
	if second.Skipped {
		t.Fatal("build after reset must not be skipped")
	}
	_ = mock
}

func TestCleanIsIdempotent(t *testing.T) {
	orch, _, root := newTestOrchestrator(t, false)

	outDir := filepath.Join(target.Core.Cwd(root), target.Core.OutputDir())
	if err := os.MkdirAll(filepath.Join(outDir, "debug"), 0o755); err != nil {
		t.Fatal(err)
	}

	first := orch.Clean(target.Core)
	if !first.Success() {
		t.Fatalf("first clean failed: %+v", first)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatal("expected output dir removed")
	}

	second := orch.Clean(target.Core)
	if !second.Success() {
		t.Fatalf("second clean failed: %+v", second)
	}
}

func TestProdTranspiledBuildReinstalls(t *testing.T) {
	orch, mock, _ := newTestOrchestrator(t, true)

	result := orch.Build(context.Background(), target.Shared, false)
	if !result.Success() {
		t.Fatalf("build failed: %+v", result)
	}

	prodInstall := target.Shared.InstallCmd(true)
	if mock.CallCount(prodInstall) < 1 {
		t.Fatal("expected a production install invocation after a prod transpiled build")
	}
}
