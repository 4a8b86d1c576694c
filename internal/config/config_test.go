package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "synth.ini"), dir)
	if err != nil {
		t.Fatal(err)
	}
	want := Default(dir)
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestWriteDefaultThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".synth", "synth.ini")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Production {
		t.Error("expected production=false from written default")
	}
	if cfg.Profile != "default" {
		t.Errorf("Profile = %q, want default", cfg.Profile)
	}
	if cfg.MaxWorkers < 1 {
		t.Errorf("MaxWorkers = %d, want >= 1", cfg.MaxWorkers)
	}
}

func TestLoadOverlaysExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synth.ini")
	contents := "max_workers = 4\nproduction = true\ndebug = true\nprofile = ci\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want 4", cfg.MaxWorkers)
	}
	if !cfg.Production || !cfg.Debug {
		t.Error("expected production and debug to be overlaid as true")
	}
	if cfg.Profile != "ci" {
		t.Errorf("Profile = %q, want ci", cfg.Profile)
	}
	if cfg.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", cfg.RepoRoot, dir)
	}
}
