// Package config loads orchestrator configuration from an .ini file, using
// gopkg.in/ini.v1 — the teacher declares this dependency in go.mod but
// never actually calls it (its own config_test.go does, via
// ini.Load(configPath), showing the intent); this package wires it for
// real, generalizing the teacher's field set (worker/build/behavior knobs)
// down to what a polyglot module-graph orchestrator needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
)

// Config holds the orchestrator's run-time settings.
type Config struct {
	// RepoRoot is the repository root all target paths are relative to.
	RepoRoot string

	// Production toggles the prod flag threaded through job types.
	Production bool

	// MaxWorkers bounds how many independent top-level targets may be
	// built concurrently.
	MaxWorkers int

	Debug  bool
	Force  bool
	YesAll bool

	Profile string
}

// Default returns a Config with the teacher's sizing heuristic (half the
// CPU count, floor 1), Profile "default", and every other field at its
// zero value.
func Default(repoRoot string) Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return Config{
		RepoRoot:   repoRoot,
		MaxWorkers: workers,
		Profile:    "default",
	}
}

// Load reads path (an .ini file) and overlays it onto Default(repoRoot).
// A missing file is not an error: the defaults apply as-is, matching the
// teacher's "config file is optional" behavior.
func Load(path, repoRoot string) (Config, error) {
	cfg := Default(repoRoot)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}

	sec := file.Section("")
	if sec.HasKey("max_workers") {
		cfg.MaxWorkers = sec.Key("max_workers").MustInt(cfg.MaxWorkers)
	}
	cfg.Production = sec.Key("production").MustBool(cfg.Production)
	cfg.Debug = sec.Key("debug").MustBool(cfg.Debug)
	cfg.Force = sec.Key("force").MustBool(cfg.Force)
	cfg.YesAll = sec.Key("yes_all").MustBool(cfg.YesAll)
	if sec.HasKey("profile") {
		cfg.Profile = sec.Key("profile").String()
	}

	return cfg, nil
}

// WriteDefault writes the default configuration to path as explicit keys
// under a "synth configuration" comment, creating parent directories as
// needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	file := ini.Empty()
	sec := file.Section("")
	sec.Comment = "synth configuration"
	if _, err := sec.NewKey("max_workers", fmt.Sprint(Default("").MaxWorkers)); err != nil {
		return err
	}
	if _, err := sec.NewKey("production", "false"); err != nil {
		return err
	}
	if _, err := sec.NewKey("debug", "false"); err != nil {
		return err
	}
	if _, err := sec.NewKey("force", "false"); err != nil {
		return err
	}
	if _, err := sec.NewKey("yes_all", "false"); err != nil {
		return err
	}
	if _, err := sec.NewKey("profile", "default"); err != nil {
		return err
	}

	return file.SaveTo(path)
}
