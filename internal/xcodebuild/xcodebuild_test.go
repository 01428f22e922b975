package xcodebuild

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
)

// argParser is prepended to every fake delegate; it sets $dest and $plist.
const argParser = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -exportPath) dest="$2"; shift ;;
    -exportOptionsPlist) plist="$2"; shift ;;
  esac
  shift
done
`

func writeDelegate(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake delegates are shell scripts")
	}
	path := filepath.Join(t.TempDir(), "fake-xcodebuild")
	if err := os.WriteFile(path, []byte(argParser+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newJob(t *testing.T, m config.Method) export.Job {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "App")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	opts, err := export.NewOptions(m, config.SigningAutomatic, "")
	if err != nil {
		t.Fatal(err)
	}
	return export.Job{
		Index:          1,
		SourcePath:     "/in/App.xcarchive",
		DestinationDir: dest,
		Method:         m,
		Options:        opts,
	}
}

func testConfig(delegate string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Delegate = delegate
	return &cfg
}

func TestRun_Success(t *testing.T) {
	delegate := writeDelegate(t, `
echo "exporting to $dest"
grep -q "<string>ad-hoc</string>" "$plist" || { echo "error: method missing" >&2; exit 3; }
printf 'payload' > "$dest/App.ipa"
`)
	job := newJob(t, config.MethodAdHoc)
	var out bytes.Buffer

	res := NewRunner(testConfig(delegate), &out).Run(context.Background(), job)

	if !res.OK() {
		t.Fatalf("status = %s (%s), output:\n%s", res.Status, res.Detail, res.Output)
	}
	if res.ExitCode != 0 || res.Kind != export.KindNone {
		t.Errorf("exit=%d kind=%q", res.ExitCode, res.Kind)
	}
	if res.Artifact != filepath.Join(job.DestinationDir, "App.ipa") || res.ArtifactSize != int64(len("payload")) {
		t.Errorf("artifact = %q (%d bytes)", res.Artifact, res.ArtifactSize)
	}
	if !strings.Contains(out.String(), OutputPrefix+"exporting to "+job.DestinationDir) {
		t.Errorf("delegate output not streamed with prefix: %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(job.DestinationDir, OptionsPlistName)); !os.IsNotExist(err) {
		t.Errorf("options plist left behind: %v", err)
	}
	if res.Output != "" {
		t.Errorf("successful result kept output: %q", res.Output)
	}
}

func TestRun_NonzeroExit(t *testing.T) {
	delegate := writeDelegate(t, `
echo "** EXPORT FAILED **"
echo "error: exportArchive: No signing certificate \"iOS Distribution\" found" >&2
exit 70
`)
	job := newJob(t, config.MethodAppStore)

	res := NewRunner(testConfig(delegate), &bytes.Buffer{}).Run(context.Background(), job)

	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Kind != export.KindExecution || res.ExitCode != 70 {
		t.Errorf("kind=%q exit=%d", res.Kind, res.ExitCode)
	}
	if !strings.HasPrefix(res.Detail, "exit status 70: No signing certificate") {
		t.Errorf("detail = %q", res.Detail)
	}
	if !strings.Contains(res.Output, "EXPORT FAILED") {
		t.Errorf("output tail = %q", res.Output)
	}
}

func TestRun_ExitZeroWithoutPackage(t *testing.T) {
	delegate := writeDelegate(t, `echo "nothing to do"`)
	job := newJob(t, config.MethodDevelopment)

	res := NewRunner(testConfig(delegate), &bytes.Buffer{}).Run(context.Background(), job)

	if res.OK() || res.Kind != export.KindExecution {
		t.Fatalf("status=%s kind=%q", res.Status, res.Kind)
	}
	if res.Detail != ErrNoPackage.Error() {
		t.Errorf("detail = %q", res.Detail)
	}
}

func TestRun_Timeout(t *testing.T) {
	delegate := writeDelegate(t, `exec sleep 5`)
	cfg := testConfig(delegate)
	cfg.Timeout = 200 * time.Millisecond
	job := newJob(t, config.MethodDevelopment)

	start := time.Now()
	res := NewRunner(cfg, &bytes.Buffer{}).Run(context.Background(), job)

	if res.Kind != export.KindTimeout || res.Detail != "timeout" {
		t.Fatalf("kind=%q detail=%q", res.Kind, res.Detail)
	}
	if time.Since(start) > 4*time.Second {
		t.Errorf("timeout did not stop the delegate promptly")
	}
}

func TestRun_Canceled(t *testing.T) {
	delegate := writeDelegate(t, `exec sleep 5`)
	job := newJob(t, config.MethodDevelopment)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res := NewRunner(testConfig(delegate), &bytes.Buffer{}).Run(ctx, job)

	if res.Kind != export.KindCanceled {
		t.Fatalf("kind=%q detail=%q", res.Kind, res.Detail)
	}
}

func TestRun_AlreadyCanceled(t *testing.T) {
	job := newJob(t, config.MethodDevelopment)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewRunner(testConfig("/nonexistent"), &bytes.Buffer{}).Run(ctx, job)

	if res.Kind != export.KindCanceled || res.ExitCode != export.NoExitCode {
		t.Errorf("kind=%q exit=%d", res.Kind, res.ExitCode)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	job := newJob(t, config.MethodDevelopment)
	cfg := testConfig(filepath.Join(t.TempDir(), "no-such-tool"))

	res := NewRunner(cfg, &bytes.Buffer{}).Run(context.Background(), job)

	if res.Kind != export.KindSpawn || res.ExitCode != export.NoExitCode {
		t.Fatalf("kind=%q exit=%d detail=%q", res.Kind, res.ExitCode, res.Detail)
	}
	if _, err := os.Stat(filepath.Join(job.DestinationDir, OptionsPlistName)); !os.IsNotExist(err) {
		t.Errorf("options plist left behind after spawn failure")
	}
}

func TestRun_PTY(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo terminal available: %v", err)
	}
	ptmx.Close()
	tty.Close()

	delegate := writeDelegate(t, `
if [ -t 1 ]; then echo "on a tty"; fi
printf 'x' > "$dest/App.ipa"
`)
	cfg := testConfig(delegate)
	cfg.UsePTY = true
	job := newJob(t, config.MethodDevelopment)
	var out bytes.Buffer

	res := NewRunner(cfg, &out).Run(context.Background(), job)

	if !res.OK() {
		t.Fatalf("status=%s detail=%q", res.Status, res.Detail)
	}
	if !strings.Contains(out.String(), "on a tty") {
		t.Errorf("delegate did not see a terminal: %q", out.String())
	}
}

func TestBuild_Args(t *testing.T) {
	cfg := testConfig(`xcrun "xcode build"`)
	cfg.AllowProvisioningUpdates = true
	job := export.Job{SourcePath: "/in/A.xcarchive", DestinationDir: "/out/A"}

	args, err := Build(cfg, job, "/out/A/ExportOptions.plist")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"xcrun", "xcode build",
		"-exportArchive",
		"-archivePath", "/in/A.xcarchive",
		"-exportPath", "/out/A",
		"-exportOptionsPlist", "/out/A/ExportOptions.plist",
		"-allowProvisioningUpdates",
	}
	if strings.Join(args, "|") != strings.Join(want, "|") {
		t.Errorf("args = %q\nwant   %q", args, want)
	}

	cfg.AllowProvisioningUpdates = false
	args, _ = Build(cfg, job, "p")
	if args[len(args)-1] == "-allowProvisioningUpdates" {
		t.Error("provisioning flag present while disabled")
	}
}

func TestDelegateWords_Errors(t *testing.T) {
	if _, err := DelegateWords("   "); !errors.Is(err, ErrEmptyDelegate) {
		t.Errorf("blank delegate: err = %v", err)
	}
	if _, err := DelegateWords(`xcodebuild "unterminated`); err == nil {
		t.Error("unterminated quote accepted")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name, output, want string
	}{
		{"export error wins", "error: Signing certificate X not found\nerror: exportArchive: Bad things\n", "Bad things"},
		{"signing", "line\nNo signing certificate \"iOS Development\" found\n", `No signing certificate "iOS Development" found`},
		{"provisioning", "No profiles for 'com.example.app' were found\n", "No profiles for 'com.example.app' were found"},
		{"bad archive", "archive at path '/x' is not a valid archive\n", "archive at path '/x' is not a valid archive"},
		{"generic", "xcodebuild: error: Unknown option\n", "Unknown option"},
		{"crlf", "error: exportArchive: Timed out\r\n", "Timed out"},
		{"nothing", "all good\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.output); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineWriter_PrefixesAcrossWrites(t *testing.T) {
	var buf bytes.Buffer
	lw := newLineWriter(&buf, "> ")

	for _, chunk := range []string{"one\ntw", "o\n", "three"} {
		if _, err := lw.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := buf.String(), "> one\n> two\n> three"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTailBuffer_KeepsEnd(t *testing.T) {
	tb := newTailBuffer(8)
	tb.Write([]byte("abcdef"))
	tb.Write([]byte("gh\r\nij"))
	if got := tb.String(); got != "efgh\nij" {
		t.Errorf("got %q", got)
	}
}

func TestLastLines(t *testing.T) {
	if got := LastLines("a\n\nb\nc\n  \nd\n", 3); got != "b\nc\nd" {
		t.Errorf("got %q", got)
	}
	if got := LastLines("", 3); got != "" {
		t.Errorf("empty input: got %q", got)
	}
}

func TestFindPackage(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := FindPackage(dir); !errors.Is(err, ErrNoPackage) {
		t.Fatalf("empty dir: err = %v", err)
	}
	os.WriteFile(filepath.Join(dir, "B.ipa"), []byte("bb"), 0o644)
	os.WriteFile(filepath.Join(dir, "A.IPA"), []byte("a"), 0o644)
	os.Mkdir(filepath.Join(dir, "C.ipa"), 0o755)

	path, size, err := FindPackage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "A.IPA" || size != 1 {
		t.Errorf("got %s (%d)", path, size)
	}
}
