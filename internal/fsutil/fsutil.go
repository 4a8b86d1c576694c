// Package fsutil holds the small set of filesystem helpers the
// orchestrator needs for clean/after-build: existence checks, copy
// operations that shell out to cp, and a remove that falls back to rm -rf
// when os.RemoveAll fails, following the teacher's
// util.CopyFile/CopyDir/RemoveAll and the Rust original's
// fstools::cp_file/cp_folder/rm_folder.
package fsutil

import (
	"fmt"
	"os"
	"os/exec"
)

// Exists reports whether path exists at all (file or directory).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies a single file, preserving mode and timestamps.
func CopyFile(src, dst string) error {
	cmd := exec.Command("cp", "-p", src, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("fsutil: copy %s -> %s: %w: %s", src, dst, err, out)
	}
	return nil
}

// CopyDir recursively copies a directory tree, preserving mode and
// timestamps, matching the original's fs_extra::dir::copy semantics.
func CopyDir(src, dst string) error {
	if !Exists(src) {
		return nil
	}
	// Create dst first so cp always places src inside it (dst/<base of src>),
	// whether or not dst existed before.
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("fsutil: copy dir %s -> %s: %w", src, dst, err)
	}
	cmd := exec.Command("cp", "-Rp", src, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("fsutil: copy dir %s -> %s: %w: %s", src, dst, err, out)
	}
	return nil
}

// RemoveAll removes path if it exists, reporting whether anything was
// actually removed so callers (clean) can log an accurate path list and
// stay idempotent on a second call, mirroring rm_folder's no-op-if-absent
// behavior.
func RemoveAll(path string) (removed bool, err error) {
	if !Exists(path) {
		return false, nil
	}
	if err := os.RemoveAll(path); err == nil {
		return true, nil
	}
	cmd := exec.Command("rm", "-rf", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return false, fmt.Errorf("fsutil: remove %s: %w: %s", path, err, out)
	}
	return true, nil
}
