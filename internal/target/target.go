// Package target implements the target graph (C1) and job definition (C2):
// the closed enumeration of modules in the polyglot repository, their
// kind, working directory, declared dependencies, job applicability, and
// the command strings each job invokes. Grounded on the original Rust
// target/mod.rs enum-with-methods shape, generalized per SPEC_FULL.md
// §4.1a into a CommandProvider strategy (provider.go) the way the
// teacher's build/phases.go dispatches per build phase.
package target

import "path/filepath"

// Kind distinguishes a target's toolchain: a native compiler (Rust/cargo)
// or a transpiler/package manager (TypeScript/yarn).
type Kind int

const (
	Native Kind = iota
	Transpiled
)

func (k Kind) String() string {
	switch k {
	case Native:
		return "Native"
	case Transpiled:
		return "Transpiled"
	default:
		return "Unknown"
	}
}

// Name is the closed enumeration of modules, matching spec.md §6's display
// and parse form exactly.
type Name string

const (
	Core    Name = "Core"
	Shared  Name = "Shared"
	Binding Name = "Binding"
	Wrapper Name = "Wrapper"
	Wasm    Name = "Wasm"
	Client  Name = "Client"
	Updater Name = "Updater"
	App     Name = "App"
	Cli     Name = "Cli"
)

// declOrder is the enumeration as declared in spec.md §6, used both as the
// Parse table and as the stable input order to topoOrderStrict.
var declOrder = []Name{Core, Shared, Binding, Wrapper, Wasm, Client, Updater, App, Cli}

func (n Name) String() string { return string(n) }

// Parse matches s exactly against the closed enumeration of target names.
func Parse(s string) (Name, error) {
	for _, n := range declOrder {
		if string(n) == s {
			return n, nil
		}
	}
	return "", &UnknownNameError{Name: s}
}

// RelPath returns the target's path relative to the repository root, per
// spec.md §6's canonical table.
func (n Name) RelPath() string {
	switch n {
	case Core:
		return filepath.Join("application", "apps", "indexer")
	case Shared:
		return filepath.Join("application", "platform")
	case Binding:
		return filepath.Join("application", "apps", "rustcore", "rs-bindings")
	case Wrapper:
		return filepath.Join("application", "apps", "rustcore", "ts-bindings")
	case Wasm:
		return filepath.Join("application", "apps", "rustcore", "wasm-bindings")
	case Client:
		return filepath.Join("application", "client")
	case Updater:
		return filepath.Join("application", "apps", "precompiled", "updater")
	case App:
		return filepath.Join("application", "holder")
	case Cli:
		return "cli"
	default:
		return ""
	}
}

// Cwd returns the target's absolute working directory, rooted at root.
func (n Name) Cwd(root string) string {
	return filepath.Join(root, n.RelPath())
}

// Kind reports whether n's toolchain is native-compiled or transpiled.
// Updater ships as a precompiled native crate alongside App (SPEC_FULL.md
// §6 enrichment; absent from the original source, added as a leaf Native
// target).
func (n Name) Kind() Kind {
	switch n {
	case Core, Binding, Cli, Wasm, Updater:
		return Native
	case Client, Wrapper, Shared, App:
		return Transpiled
	default:
		return Native
	}
}

// Deps returns n's declared dependencies, per spec.md §6's edge table.
// Order matters: §5 requires sibling dependencies be built in this
// declared order, not in parallel.
func (n Name) Deps() []Name {
	switch n {
	case Binding:
		return []Name{Shared}
	case Wrapper:
		return []Name{Binding, Shared}
	case Client:
		return []Name{Shared, Wasm}
	case App:
		return []Name{Wrapper, Client, Core, Updater}
	default:
		return nil
	}
}

// All returns every target in a topological order of the dependency DAG
// (property 1/2 of spec.md §8): for every T and every D in deps(T), D
// precedes T.
func All() []Name {
	order, err := topoOrderStrict(declOrder, Name.Deps)
	if err != nil {
		// The target graph is fixed, compile-time data; a cycle here is a
		// programming error in this package, not a runtime condition.
		panic(err)
	}
	return order
}

// OutputDir is the kind-specific build output directory cleaned by
// Clean/Reset, relative to the target's own cwd.
func (n Name) OutputDir() string {
	if n.Kind() == Native {
		return "target"
	}
	return "node_modules"
}
