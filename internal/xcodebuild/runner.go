package xcodebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
)

const (
	// OptionsPlistName is the options file written next to the export and
	// removed again once the delegate exits.
	OptionsPlistName = "ExportOptions.plist"
	// PackageExt is the extension of the produced package.
	PackageExt = ".ipa"
	// OutputPrefix marks delegate lines in the streamed output.
	OutputPrefix = "  │ "

	tailLines = 20
)

// Runner runs export jobs through the configured delegate.
type Runner struct {
	cfg *config.Config
	out io.Writer
}

// NewRunner returns a Runner streaming delegate output to out.
func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	return &Runner{cfg: cfg, out: out}
}

// Run executes one job and converts every outcome into a Result; it never
// returns an error. job.DestinationDir must already exist.
func (r *Runner) Run(ctx context.Context, job export.Job) export.Result {
	if err := ctx.Err(); err != nil {
		return export.Failed(job, export.KindCanceled, export.NoExitCode, 0, "batch interrupted before start")
	}

	plistPath := filepath.Join(job.DestinationDir, OptionsPlistName)
	data, err := export.EncodePlist(job.Options)
	if err != nil {
		return export.Failed(job, export.KindSpawn, export.NoExitCode, 0, err.Error())
	}
	if err := os.WriteFile(plistPath, data, 0o644); err != nil {
		return export.Failed(job, export.KindSpawn, export.NoExitCode, 0,
			fmt.Sprintf("cannot write export options: %v", err))
	}
	defer os.Remove(plistPath)

	args, err := Build(r.cfg, job, plistPath)
	if err != nil {
		return export.Failed(job, export.KindSpawn, export.NoExitCode, 0, err.Error())
	}

	jobCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	res := Execute(jobCtx, args, r.out, OutputPrefix, r.cfg.UsePTY)
	result := r.classify(ctx, jobCtx, job, res)
	if !result.OK() {
		result.Output = LastLines(res.Output, tailLines)
	}
	return result
}

func (r *Runner) classify(ctx, jobCtx context.Context, job export.Job, res ExecResult) export.Result {
	switch {
	case !res.Started:
		return export.Failed(job, export.KindSpawn, export.NoExitCode, res.Duration,
			fmt.Sprintf("cannot launch delegate: %v", res.Err))
	case ctx.Err() != nil:
		return export.Failed(job, export.KindCanceled, res.ExitCode, res.Duration, "interrupted")
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		return export.Failed(job, export.KindTimeout, res.ExitCode, res.Duration, "timeout")
	case res.Err != nil || res.ExitCode != 0:
		detail := fmt.Sprintf("exit status %d", res.ExitCode)
		if hint := Classify(res.Output); hint != "" {
			detail += ": " + hint
		}
		return export.Failed(job, export.KindExecution, res.ExitCode, res.Duration, detail)
	}

	ipa, size, err := FindPackage(job.DestinationDir)
	if err != nil {
		return export.Failed(job, export.KindExecution, res.ExitCode, res.Duration, err.Error())
	}
	return export.Succeeded(job, res.Duration, ipa, size)
}

// ErrNoPackage is returned when the delegate exited cleanly but left no
// package behind.
var ErrNoPackage = errors.New("export succeeded, but no .ipa was produced")

// FindPackage returns the first .ipa (by name) directly inside dir.
func FindPackage(dir string) (string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("read export directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), PackageExt) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", 0, ErrNoPackage
	}
	sort.Strings(names)
	path := filepath.Join(dir, names[0])
	fi, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat package: %w", err)
	}
	return path, fi.Size(), nil
}
