package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors returned while resolving configuration. All of them are
// fatal: the batch is aborted before any export job starts.
var (
	ErrInvalidMethod    = errors.New("invalid export method")
	ErrInputNotFound    = errors.New("input directory not found")
	ErrOutputUnwritable = errors.New("output directory not writable")
)

// Resolve validates the input and output directories and rewrites both
// paths to their absolute, symlink-resolved form. The output directory is
// created when absent; calling Resolve again is a no-op on the filesystem.
func (c *Config) Resolve() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}

	fi, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, c.InputDir)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, c.InputDir)
	}
	inputAbs, err := absPath(c.InputDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputNotFound, c.InputDir, err)
	}

	// Compare before creating anything so a rejected output never leaves
	// a directory behind inside the input tree.
	outputAbs, err := resolveMissing(c.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputUnwritable, c.OutputDir, err)
	}
	if err := c.ValidatePaths(inputAbs, outputAbs); err != nil {
		return err
	}

	if err := os.MkdirAll(outputAbs, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}
	if err := checkWritable(outputAbs); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}

	c.InputDir = inputAbs
	c.OutputDir = outputAbs
	return nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// resolveMissing is absPath for a path that may not exist yet: the deepest
// existing ancestor is symlink-resolved and the missing tail appended.
func resolveMissing(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var tail []string
	for dir := abs; ; dir = filepath.Dir(dir) {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) || filepath.Dir(dir) == dir {
			return "", err
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
	}
}

// checkWritable creates and removes a scratch file in dir. Permission bits
// alone are not enough (read-only mounts, ACLs).
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".arc2ipa-write-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
