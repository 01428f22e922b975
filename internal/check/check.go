// Package check provides system diagnostics (--check mode) and pre-batch
// dependency validation (CheckDeps) for the export delegate.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/xcodebuild"
)

// ErrDelegateNotFound is returned by CheckDeps when the delegate's program
// cannot be resolved.
var ErrDelegateNotFound = errors.New("export delegate not found on PATH")

// versionTimeout bounds the "-version" probe in RunCheck.
const versionTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// CheckDeps verifies that the first word of the delegate command resolves
// to an executable. It returns the resolved path.
func CheckDeps(cfg *config.Config) (string, error) {
	words, err := xcodebuild.DelegateWords(cfg.Delegate)
	if err != nil {
		return "", err
	}
	path, err := exec.LookPath(words[0])
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDelegateNotFound, words[0])
	}
	return path, nil
}

// RunCheck runs the interactive --check flow: delegate resolution and
// version, then the configured directories. It reports whether everything
// needed for a batch is in place.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	ok := checkDelegate(cfg, log)
	if !checkInput(cfg, log) {
		ok = false
	}
	checkOutput(cfg, log)
	return ok
}

func checkDelegate(cfg *config.Config, log Logger) bool {
	path, err := CheckDeps(cfg)
	if err != nil {
		log.Error("%v", err)
		return false
	}
	log.Success("delegate: %s", path)

	words, _ := xcodebuild.DelegateWords(cfg.Delegate)
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	args := append(words[1:len(words):len(words)], "-version")
	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		log.Warn("delegate found but -version failed: %v", err)
		return true
	}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			log.Info("  %s", line)
		}
	}
	return true
}

func checkInput(cfg *config.Config, log Logger) bool {
	if cfg.InputDir == "" {
		log.Warn("no input directory configured")
		return true
	}
	fi, err := os.Stat(cfg.InputDir)
	switch {
	case err != nil:
		log.Error("input directory %s: %v", cfg.InputDir, err)
		return false
	case !fi.IsDir():
		log.Error("input %s is not a directory", cfg.InputDir)
		return false
	}
	log.Success("input directory: %s", cfg.InputDir)
	return true
}

// checkOutput is informational; the batch creates a missing output directory.
func checkOutput(cfg *config.Config, log Logger) {
	if cfg.OutputDir == "" {
		return
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		log.Info("output directory %s will be created", filepath.Clean(cfg.OutputDir))
		return
	}
	log.Success("output directory: %s", cfg.OutputDir)
}
