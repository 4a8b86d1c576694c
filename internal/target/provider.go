package target

import "go-synth/internal/job"

// TestCmd is one test invocation: a command string and the (repo-root
// relative) directory to run it in. An empty Cwd means "the target's own
// RelPath()", letting most targets omit it.
type TestCmd struct {
	Command string
	Cwd     string
}

// CommandProvider is the per-kind strategy of SPEC_FULL.md §4.1a: the
// build, install and lint commands grouped behind an interface instead of
// a single enum match. Test commands (Name.TestCmds) and after-build steps
// (the orchestrator's publish) are not part of it. It mirrors the teacher's build/phases.go per-phase
// dispatch (phase name -> executor). Name.BuildCmd etc. layer per-target
// overrides (Binding, Wasm, App) on top of the provider each target's
// Kind() selects.
type CommandProvider interface {
	BuildCmd(prod bool) string
	InstallCmd(prod bool) string
	LintCmd(prod bool) string
}

// nativeProvider shapes commands for a cargo-built Rust crate.
type nativeProvider struct{}

func (nativeProvider) BuildCmd(prod bool) string {
	cmd := "cargo build --color always --all-features"
	if prod {
		cmd += " --release"
	}
	return cmd
}

// InstallCmd is empty for native targets: cargo fetches its own
// dependencies as part of build, so there is no separate install step.
func (nativeProvider) InstallCmd(prod bool) string { return "" }

func (nativeProvider) LintCmd(prod bool) string {
	return "cargo clippy --color always --all --all-features -- -D warnings"
}

// transpiledProvider shapes commands for a yarn-managed TypeScript
// package.
type transpiledProvider struct{}

func (transpiledProvider) BuildCmd(prod bool) string {
	if prod {
		return "yarn run prod"
	}
	return "yarn run build"
}

func (transpiledProvider) InstallCmd(prod bool) string {
	if prod {
		return "yarn install --production"
	}
	return "yarn install"
}

func (transpiledProvider) LintCmd(prod bool) string { return "yarn run lint" }

func (n Name) provider() CommandProvider {
	if n.Kind() == Native {
		return nativeProvider{}
	}
	return transpiledProvider{}
}

// BuildCmd returns the shell command that builds n. Binding and Wasm
// override their provider's default: Binding is a native Node addon
// (cargo cdylib plus a neon postbuild step, not a plain cargo build), and
// Wasm is built through wasm-pack rather than cargo directly.
func (n Name) BuildCmd(prod bool) string {
	switch n {
	case Binding:
		cmd := "cargo build -p binding --color always --all-features"
		if prod {
			cmd += " --release"
		}
		cmd += " && neon build"
		if prod {
			cmd += " --release"
		}
		return cmd
	case Wasm:
		cmd := "wasm-pack build --target web"
		if prod {
			cmd += " --release"
		}
		return cmd
	default:
		return n.provider().BuildCmd(prod)
	}
}

// InstallCmd returns the shell command that installs n's dependencies.
// Binding delegates to Wrapper: the native addon's toolchain (neon)
// lives in ts-bindings' node_modules, so installing Binding actually
// means installing Wrapper. App always installs without --production,
// even in a prod run, matching the original's "for app we don't need
// --production" comment.
func (n Name) InstallCmd(prod bool) string {
	switch n {
	case Binding:
		return Wrapper.provider().InstallCmd(prod)
	case App:
		return n.provider().InstallCmd(false)
	default:
		return n.provider().InstallCmd(prod)
	}
}

// InstallDir is the directory InstallCmd runs in, relative to the repo
// root. It follows the InstallCmd delegation: Binding installs in
// Wrapper's directory.
func (n Name) InstallDir() string {
	if n == Binding {
		return Wrapper.RelPath()
	}
	return n.RelPath()
}

// LintCmd returns the static-analysis command for n.
func (n Name) LintCmd(prod bool) string {
	return n.provider().LintCmd(prod)
}

// RunCmd returns the shell command that runs n's built artifact. Only App
// (the Electron shell) and Cli (the Rust binary) are runnable.
func (n Name) RunCmd() string {
	switch n {
	case App:
		return "yarn start"
	case Cli:
		return "cargo run --color always --all-features"
	default:
		return ""
	}
}

// TestCmds returns n's test invocations, or nil if n has none. Core, Cli,
// and Wasm are the only targets with real test commands, per SPEC_FULL.md
// §4.1a.
func (n Name) TestCmds(prod bool) []TestCmd {
	switch n {
	case Core:
		cmd := "cargo test --color always --all-features"
		if prod {
			cmd += " --release"
		}
		return []TestCmd{{Command: cmd}}
	case Cli:
		cmd := "cargo test --color always"
		if prod {
			cmd += " --release"
		}
		return []TestCmd{{Command: cmd}}
	case Wasm:
		return []TestCmd{{Command: "wasm-pack test --headless --chrome"}}
	default:
		return nil
	}
}

// HasJob reports whether jt is meaningful for n, so the orchestrator can
// return a clean no-op instead of invoking a non-existent step.
func (n Name) HasJob(jt job.Type) bool {
	switch jt.Kind {
	case job.Lint, job.Clean, job.Build:
		// Every target lints, cleans, and builds.
		return true

	case job.Install:
		switch n {
		case Wrapper:
			// Already installed as a side effect of Binding's delegated
			// install; installing it again here would be redundant.
			return false
		case Core, Cli, Wasm, Updater:
			// Pure native targets: cargo fetches deps as part of build.
			return false
		default:
			return true
		}

	case job.AfterBuild:
		switch n {
		case Binding, Wrapper, Shared, App:
			return true
		default:
			return false
		}

	case job.Test:
		return len(n.TestCmds(jt.Prod)) > 0

	case job.Run:
		switch n {
		case App, Cli:
			return true
		default:
			return false
		}

	default:
		return false
	}
}
