package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/backmassage/arc2ipa/internal/config"
)

type recLogger struct {
	lines []string
}

func (r *recLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recLogger) Success(f string, a ...interface{}) { r.add("DONE", f, a...) }
func (r *recLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }
func (r *recLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		r.add("DEBUG", f, a...)
	}
}

func (r *recLogger) contains(s string) bool {
	for _, l := range r.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func fakeDelegate(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake delegate is a shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-xcodebuild")
	script := "#!/bin/sh\necho \"Xcode 16.0\"\necho \"Build version 16A242d\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckDeps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Delegate = fakeDelegate(t)
	path, err := CheckDeps(&cfg)
	if err != nil || path != cfg.Delegate {
		t.Fatalf("CheckDeps = %q, %v", path, err)
	}

	cfg.Delegate = "arc2ipa-no-such-delegate --flag"
	if _, err := CheckDeps(&cfg); !errors.Is(err, ErrDelegateNotFound) {
		t.Errorf("missing delegate: err = %v", err)
	}
}

func TestRunCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Delegate = fakeDelegate(t)
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")

	log := &recLogger{}
	if !RunCheck(&cfg, log) {
		t.Fatalf("RunCheck failed: %v", log.lines)
	}
	for _, want := range []string{"DONE delegate: " + cfg.Delegate, "INFO   Xcode 16.0", "will be created"} {
		if !log.contains(want) {
			t.Errorf("missing %q in %v", want, log.lines)
		}
	}
}

func TestRunCheck_Failures(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Delegate = "arc2ipa-no-such-delegate"
	cfg.InputDir = filepath.Join(t.TempDir(), "missing")

	log := &recLogger{}
	if RunCheck(&cfg, log) {
		t.Fatal("RunCheck passed with a missing delegate and input")
	}
	if !log.contains("ERROR export delegate not found") || !log.contains("ERROR input directory") {
		t.Errorf("lines = %v", log.lines)
	}
}
