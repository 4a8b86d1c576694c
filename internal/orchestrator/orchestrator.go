// Package orchestrator implements the job orchestrator (C6): the per-job
// algorithms (install/lint/build/test/clean/after-build/reset), each
// dispatching by target kind, recursively resolving dependencies,
// consulting the checksum oracle for skip eligibility, serializing
// concurrent builds through the coordinator, invoking commands through the
// spawner, and reporting every step to the progress tracker. Grounded in
// the original Rust Target::build/install/test/clean/reset methods and in
// the teacher's build.DoBuild/buildPackage orchestration.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"go-synth/internal/checksum"
	"go-synth/internal/coordinator"
	"go-synth/internal/dlog"
	"go-synth/internal/fsutil"
	"go-synth/internal/history"
	"go-synth/internal/job"
	"go-synth/internal/spawner"
	"go-synth/internal/target"
	"go-synth/internal/tracker"
)

// Orchestrator ties the core components together for one run. A run is
// scoped to a single production-mode setting, matching the checksum
// records' own dev/prod file split.
type Orchestrator struct {
	Root    string
	Prod    bool
	Spawner spawner.Spawner
	Tracker *tracker.Tracker
	Log     dlog.LibraryLogger
	History *history.Store // nil disables history recording

	checksum *checksum.Records
	coord    *coordinator.Coordinator[Result]
}

// New constructs an Orchestrator rooted at root, loading the checksum
// records for the given production mode.
func New(root string, prod bool, sp spawner.Spawner, tr *tracker.Tracker, log dlog.LibraryLogger, hist *history.Store) (*Orchestrator, error) {
	records, err := checksum.Get(root, prod)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		Root:     root,
		Prod:     prod,
		Spawner:  sp,
		Tracker:  tr,
		Log:      log,
		History:  hist,
		checksum: records,
		coord:    coordinator.New[Result](),
	}, nil
}

// Checksum exposes the orchestrator's checksum records, e.g. for Persist
// on shutdown.
func (o *Orchestrator) Checksum() *checksum.Records { return o.checksum }

func (o *Orchestrator) record(t target.Name, jt job.Type, fn func() Result) Result {
	var id string
	if o.History != nil {
		if uuid, err := o.History.Start(string(t), jt.String()); err == nil {
			id = uuid
		} else {
			o.Log.Warn("history start failed for %s %s: %v", t, jt, err)
		}
	}

	result := fn()

	if o.History != nil && id != "" {
		status := history.StatusSuccess
		if !result.Success() {
			status = history.StatusFailed
		}
		if err := o.History.Finish(id, status); err != nil {
			o.Log.Warn("history finish failed for %s %s: %v", t, jt, err)
		}
	}
	return result
}

func (o *Orchestrator) logResult(label string, r Result) {
	switch {
	case !r.Success():
		o.Log.Error("%s failed", label)
	case r.Skipped:
		o.Log.Info("%s skipped", label)
	default:
		o.Log.Info("%s succeeded", label)
	}
}

func trackerResult(r Result) tracker.Result {
	if r.Success() {
		return tracker.ResultSuccess
	}
	return tracker.ResultFailed
}

// run invokes cmd through the spawner and reports it to the tracker.
// skipInfo marks whether this invocation's Skipped flag carries real skip
// information — true only for the target's own build command, which is
// the sole step a skip decision is made about. Every other step (install,
// lint, test commands) runs unconditionally and must not influence an
// overall Result's Skipped via merge.
func (o *Orchestrator) run(ctx context.Context, label, cmd, cwd string, skip, skipInfo bool) Result {
	seq := o.Tracker.Start(label)
	outcome, err := o.Spawner.Run(ctx, cmd, cwd, skip)
	if err != nil {
		o.Tracker.Finish(seq, tracker.ResultFailed, err.Error())
		return failed(err.Error())
	}
	r := Result{Skipped: outcome.Skipped, SkipInfo: skipInfo, Output: outcome.Output}
	if outcome.Success {
		r.Status = StatusSuccess
	} else {
		r.Status = StatusFailed
	}
	o.Tracker.Finish(seq, trackerResult(r), summaryText(r))
	return r
}

func summaryText(r Result) string {
	if r.Skipped {
		return "skipped"
	}
	if r.Success() {
		return "ok"
	}
	return "failed"
}

// Install runs the install step for t. When t has no install job (or skip
// is requested), it returns a no-op success immediately.
func (o *Orchestrator) Install(ctx context.Context, t target.Name, skip bool) Result {
	label := fmt.Sprintf("Install %s", t)
	return o.record(t, job.InstallJob(o.Prod), func() Result {
		if skip {
			o.Tracker.Print(label + ": skip requested")
			return noop()
		}
		if !t.HasJob(job.InstallJob(o.Prod)) {
			return noop()
		}
		cmd := t.InstallCmd(o.Prod)
		dir := filepath.Join(o.Root, t.InstallDir())
		r := o.run(ctx, label, cmd, dir, false, false)
		o.logResult(label, r)
		return r
	})
}

// Lint runs the static-analysis step for t: a plain linter for Native
// targets, or lint-then-build for Transpiled targets, since the linter
// alone does not prove compilation there.
func (o *Orchestrator) Lint(ctx context.Context, t target.Name) Result {
	label := fmt.Sprintf("Lint %s", t)
	return o.record(t, job.LintJob(), func() Result {
		if t.Kind() == target.Native {
			r := o.run(ctx, label, t.LintCmd(o.Prod), t.Cwd(o.Root), false, false)
			o.logResult(label, r)
			return r
		}

		install := o.Install(ctx, t, false)
		if !install.Success() {
			return install
		}
		lint := o.run(ctx, label, t.LintCmd(o.Prod), t.Cwd(o.Root), false, false)
		if !lint.Success() {
			final := merge(install, lint)
			o.logResult(label, final)
			return final
		}
		build := o.Build(ctx, t, false)
		final := merge(install, lint, build)
		o.logResult(label, final)
		return final
	})
}

// Clean removes t's kind-specific output directory and dist/, and drops
// its checksum entry. Calling Clean twice in a row is a no-op the second
// time: both calls succeed, the second removes nothing.
func (o *Orchestrator) Clean(t target.Name) Result {
	label := fmt.Sprintf("Clean %s", t)
	return o.record(t, job.CleanJob(), func() Result {
		cwd := t.Cwd(o.Root)
		outputDir := filepath.Join(cwd, t.OutputDir())
		distDir := filepath.Join(cwd, "dist")

		var removed []string
		for _, dir := range []string{outputDir, distDir} {
			ok, err := fsutil.RemoveAll(dir)
			if err != nil {
				r := failed(err.Error())
				o.logResult(label, r)
				return r
			}
			if ok {
				removed = append(removed, dir)
			}
		}
		o.checksum.RemoveHashIfExist(string(t))

		r := Result{Status: StatusSuccess, Output: fmt.Sprintf("removed: %v", removed)}
		o.Tracker.Print(fmt.Sprintf("%s: %v", label, removed))
		o.logResult(label, r)
		return r
	})
}

// Reset is equivalent to Clean (which already clears the checksum entry).
// It runs Clean itself, so the tracker and history ledger record it as a
// Clean job under the "Clean <target>" label.
func (o *Orchestrator) Reset(t target.Name) Result {
	return o.Clean(t)
}

// Build is the central algorithm (§4.3): deduplicated via the coordinator,
// so at most one invocation of t's build command ever runs per process.
func (o *Orchestrator) Build(ctx context.Context, t target.Name, forceSkip bool) Result {
	result, err := o.coord.Build(ctx, string(t), func() Result {
		return o.record(t, job.BuildJob(o.Prod), func() Result {
			return o.executeBuild(ctx, t, forceSkip)
		})
	})
	if err != nil {
		o.Log.Error("build %s: %v", t, err)
		return failed(err.Error())
	}
	return result
}

func (o *Orchestrator) executeBuild(ctx context.Context, t target.Name, forceSkip bool) Result {
	var steps []Result
	allDepsSkipped := true

	for _, dep := range t.Deps() {
		dr := o.Build(ctx, dep, forceSkip)
		steps = append(steps, dr)
		if !dr.Success() {
			return merge(steps...)
		}
		if !dr.Skipped {
			allDepsSkipped = false
		}
	}

	o.checksum.RegisterJob(string(t))
	changed, err := o.checksum.CheckChanged(string(t), t.Cwd(o.Root))
	if err != nil {
		o.Log.Warn("checksum for %s: %v", t, err)
		changed = true
	}
	skip := forceSkip || (allDepsSkipped && !changed)

	install := o.Install(ctx, t, false)
	steps = append(steps, install)
	if !install.Success() {
		return merge(steps...)
	}

	label := fmt.Sprintf("Build %s", t)
	buildRes := o.run(ctx, label, t.BuildCmd(o.Prod), t.Cwd(o.Root), skip, true)
	steps = append(steps, buildRes)
	o.logResult(label, buildRes)
	if !buildRes.Success() {
		return merge(steps...)
	}

	// Steps 6-7 only run when the build itself actually ran: the original
	// gates after_build, clean, and the prod reinstall inside
	// `if !skip_task { ... }` (target/mod.rs), since a skipped build's
	// artifacts haven't changed and re-publishing or reinstalling would
	// undo the point of skipping.
	if !skip {
		after := o.AfterBuild(ctx, t, o.Prod, false)
		steps = append(steps, after)
		if !after.Success() {
			return merge(steps...)
		}

		if t.Kind() == target.Transpiled && o.Prod {
			cleanRes := o.Clean(t)
			steps = append(steps, cleanRes)
			prodInstall := o.Install(ctx, t, false)
			steps = append(steps, prodInstall)
		}
	}

	return merge(steps...)
}

// AfterBuild runs t's publish step, if it has one. Only Binding, Wrapper,
// Shared, and App define one, mirroring the original's Target::after_build
// match arms.
func (o *Orchestrator) AfterBuild(ctx context.Context, t target.Name, prod bool, skip bool) Result {
	label := fmt.Sprintf("AfterBuild %s", t)
	return o.record(t, job.AfterBuildJob(prod), func() Result {
		if !t.HasJob(job.AfterBuildJob(prod)) || skip {
			return noop()
		}
		r := o.publish(t)
		o.logResult(label, r)
		return r
	})
}

// publish implements the original's per-target after_build copy steps:
// Binding publishes its compiled addon into Wrapper; Wrapper publishes its
// package into App; Shared publishes its platform types into Binding;
// App publishes the built Client into its own bundle.
func (o *Orchestrator) publish(t target.Name) Result {
	var src, dst string
	switch t {
	case target.Binding:
		src = filepath.Join(target.Binding.Cwd(o.Root), "target")
		dst = filepath.Join(target.Wrapper.Cwd(o.Root), "native")
	case target.Wrapper:
		src = filepath.Join(target.Wrapper.Cwd(o.Root), "dist")
		dst = filepath.Join(target.App.Cwd(o.Root), "node_modules", "ts-bindings")
	case target.Shared:
		src = filepath.Join(target.Shared.Cwd(o.Root), "dist")
		dst = filepath.Join(target.Binding.Cwd(o.Root), "platform")
	case target.App:
		src = filepath.Join(target.Client.Cwd(o.Root), "dist")
		dst = filepath.Join(target.App.Cwd(o.Root), "client")
	default:
		return noop()
	}

	if err := fsutil.CopyDir(src, dst); err != nil {
		return failed(err.Error())
	}
	return ok(fmt.Sprintf("copied %s -> %s", src, dst), false)
}

// Test builds t first, then runs every test command concurrently, folding
// their results by concatenation; any failing command fails the whole
// Result. Targets with no test commands return a no-op success.
func (o *Orchestrator) Test(ctx context.Context, t target.Name, prod bool) Result {
	label := fmt.Sprintf("Test %s", t)
	return o.record(t, job.TestJob(prod), func() Result {
		cmds := t.TestCmds(prod)
		if cmds == nil {
			return noop()
		}

		build := o.Build(ctx, t, false)
		if !build.Success() {
			return build
		}

		type outcome struct {
			idx int
			r   Result
		}
		results := make([]Result, len(cmds))
		ch := make(chan outcome, len(cmds))
		for i, c := range cmds {
			i, c := i, c
			go func() {
				cwd := c.Cwd
				if cwd == "" {
					cwd = t.RelPath()
				}
				r := o.run(ctx, fmt.Sprintf("%s[%d]", label, i), c.Command, filepath.Join(o.Root, cwd), false, false)
				ch <- outcome{idx: i, r: r}
			}()
		}
		for range cmds {
			res := <-ch
			results[res.idx] = res.r
		}

		final := merge(append([]Result{build}, results...)...)
		o.logResult(label, final)
		return final
	})
}
