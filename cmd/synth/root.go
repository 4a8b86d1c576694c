// Package synth wires the cobra command tree for the orchestrator CLI,
// replacing the teacher's single unwired buildCmd skeleton with one
// subcommand per job type, following cmd/build.go's shape (persistent
// flags, config load, signal handling for Ctrl-C cleanup).
package synth

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"go-synth/internal/config"
	"go-synth/internal/dlog"
	"go-synth/internal/history"
	"go-synth/internal/orchestrator"
	"go-synth/internal/spawner"
	"go-synth/internal/target"
	"go-synth/internal/tracker"
)

type options struct {
	production bool
	configPath string
	repoRoot   string
}

// env bundles the orchestrator and its collaborators for one CLI
// invocation's lifetime, closed by (*env).close.
type env struct {
	orch    *orchestrator.Orchestrator
	tracker *tracker.Tracker
	logger  *dlog.Logger
	history *history.Store
	cfg     config.Config
}

func newEnv(opts *options) (*env, error) {
	cfg, err := config.Load(opts.configPath, opts.repoRoot)
	if err != nil {
		return nil, err
	}
	cfg.Production = cfg.Production || opts.production

	logger, err := dlog.NewLogger(filepath.Join(opts.repoRoot, ".synth", "logs"))
	if err != nil {
		return nil, err
	}

	histPath := filepath.Join(opts.repoRoot, ".synth", "history.db")
	hist, err := history.Open(histPath)
	if err != nil {
		logger.Warn("history ledger unavailable: %v", err)
		hist = nil
	}

	tr := tracker.New()

	orch, err := orchestrator.New(opts.repoRoot, cfg.Production, spawner.NewProcess(), tr, logger, hist)
	if err != nil {
		return nil, err
	}

	return &env{orch: orch, tracker: tr, logger: logger, history: hist, cfg: cfg}, nil
}

// runJobs runs fn once per name, at most e.cfg.MaxWorkers running at a time,
// and reports whether every invocation succeeded. Independent top-level
// targets (distinct entries in names) have no ordering requirement between
// each other — their own dependency ordering is already enforced inside the
// orchestrator's build coordinator — so bounding them by MaxWorkers is safe.
func (e *env) runJobs(names []target.Name, fn func(target.Name) bool) bool {
	workers := e.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := true
	for _, n := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(n target.Name) {
			defer wg.Done()
			defer func() { <-sem }()
			if !fn(n) {
				mu.Lock()
				ok = false
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return ok
}

func (e *env) close() {
	e.tracker.Shutdown()
	if err := e.orch.Checksum().Persist(); err != nil {
		e.logger.Error("persist checksums: %v", err)
	}
	if e.history != nil {
		e.history.Close()
	}
	e.logger.Close()
}

func resolveTargets(args []string) ([]target.Name, error) {
	if len(args) == 0 {
		return target.All(), nil
	}
	names := make([]target.Name, 0, len(args))
	for _, a := range args {
		n, err := target.Parse(a)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// NewRoot builds the root cobra command.
func NewRoot() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "synth",
		Short:         "Development-workflow orchestrator for a polyglot module graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.production, "production", false, "build in production mode")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to synth.ini")

	cwd, err := os.Getwd()
	if err == nil {
		root.PersistentFlags().StringVar(&opts.repoRoot, "root", cwd, "repository root")
	} else {
		root.PersistentFlags().StringVar(&opts.repoRoot, "root", ".", "repository root")
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if opts.configPath == "" {
			opts.configPath = filepath.Join(opts.repoRoot, ".synth", "synth.ini")
		}
		return nil
	}

	root.AddCommand(
		newJobCommand("lint", "Run static analysis", opts, runLint),
		newJobCommand("build", "Build targets", opts, runBuild),
		newJobCommand("test", "Test targets", opts, runTest),
		newJobCommand("clean", "Remove build output", opts, runClean),
		newJobCommand("reset", "Clean and clear checksum state", opts, runReset),
		newJobCommand("install", "Install target dependencies", opts, runInstall),
		newJobCommand("run", "Run a target's binary", opts, runRun),
		newConfigCommand(opts),
	)
	return root
}

func newConfigCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the synth.ini configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default synth.ini to the config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			return nil
		},
	})
	return cmd
}

type jobFunc func(ctx context.Context, e *env, opts *options, names []target.Name) bool

func newJobCommand(use, short string, opts *options, fn jobFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [targets...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := resolveTargets(args)
			if err != nil {
				return err
			}

			e, err := newEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			go func() {
				<-sig
				cancel()
			}()
			defer signal.Stop(sig)

			ok := fn(ctx, e, opts, names)
			if !ok {
				return fmt.Errorf("one or more jobs failed")
			}
			return nil
		},
	}
}

func runLint(ctx context.Context, e *env, _ *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Lint(ctx, n).Success()
	})
}

func runBuild(ctx context.Context, e *env, _ *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Build(ctx, n, false).Success()
	})
}

func runTest(ctx context.Context, e *env, opts *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Test(ctx, n, opts.production).Success()
	})
}

func runClean(_ context.Context, e *env, _ *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Clean(n).Success()
	})
}

func runReset(_ context.Context, e *env, _ *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Reset(n).Success()
	})
}

func runInstall(ctx context.Context, e *env, _ *options, names []target.Name) bool {
	return e.runJobs(names, func(n target.Name) bool {
		return e.orch.Install(ctx, n, false).Success()
	})
}

func runRun(ctx context.Context, e *env, opts *options, names []target.Name) bool {
	ok := true
	for _, n := range names {
		build := e.orch.Build(ctx, n, false)
		if !build.Success() {
			ok = false
			continue
		}
		err := e.tracker.SuspendAndRun(func() error {
			return runBinary(ctx, opts.repoRoot, n)
		})
		if err != nil {
			e.logger.Error("run %s: %v", n, err)
			ok = false
		}
	}
	return ok
}
