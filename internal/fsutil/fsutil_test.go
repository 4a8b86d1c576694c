package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExistsAndIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !Exists(dir) || !Exists(file) {
		t.Fatal("expected both dir and file to exist")
	}
	if Exists(filepath.Join(dir, "missing")) {
		t.Fatal("missing path reported as existing")
	}
	if !IsDir(dir) {
		t.Fatal("expected dir to be reported as a directory")
	}
	if IsDir(file) {
		t.Fatal("file should not be reported as a directory")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("dst contents = %q, want payload", got)
	}
}

func TestCopyDirMissingSrcIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := CopyDir(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err != nil {
		t.Fatalf("copying a missing source should be a no-op, got: %v", err)
	}
}

func TestCopyDirRecursive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "f.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "dst")
	if err := CopyDir(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dst, "src", "nested", "f.txt")); err != nil {
		t.Fatalf("expected nested copy, got: %v", err)
	}
}

func TestRemoveAllIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := RemoveAll(target)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected first RemoveAll to report removed=true")
	}

	removed, err = RemoveAll(target)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("second RemoveAll on an absent path should report removed=false")
	}
}
