package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/backmassage/arc2ipa/internal/archive"
	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/display"
	"github.com/backmassage/arc2ipa/internal/export"
	"github.com/backmassage/arc2ipa/internal/logging"
)

// ErrNoInputsFound is reported (as a warning, not a failure) when the input
// directory holds no archives.
var ErrNoInputsFound = errors.New("no .xcarchive found")

// JobRunner executes one job. Implementations must turn every outcome,
// including cancellation, into a Result.
type JobRunner interface {
	Run(ctx context.Context, job export.Job) export.Result
}

// Run is the top-level batch entry point. It discovers archives, plans
// every job, runs them one at a time and returns the report. A failed job
// never stops the batch; canceling ctx stops the running job and records
// every job not yet started as canceled. The summary is written to out.
// The returned error covers discovery and planning only.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, runner JobRunner, out io.Writer) (*BatchReport, error) {
	report := NewBatchReport(cfg)
	defer report.finish()

	archives, err := Discover(cfg.InputDir)
	if err != nil {
		return report, fmt.Errorf("archive discovery: %w", err)
	}
	if len(archives) == 0 {
		report.NoInputs = true
		log.Warn("%v in %s", ErrNoInputsFound, cfg.InputDir)
		return report, nil
	}

	jobs, err := Plan(cfg, archives)
	if err != nil {
		return report, fmt.Errorf("plan exports: %w", err)
	}

	logBatchHeader(cfg, log, len(jobs))

	for i, job := range jobs {
		if ctx.Err() != nil {
			cancelRemaining(log, report, jobs[i:])
			break
		}
		res := runJob(ctx, cfg, log, runner, job)
		report.Add(res)
		logResult(log, res, len(jobs))
	}
	if ctx.Err() != nil {
		report.Interrupted = true
	}

	report.finish()
	logSummary(log, report)
	WriteSummary(out, report)
	return report, nil
}

// runJob prepares the destination, reads archive metadata and delegates the
// export itself to runner.
func runJob(ctx context.Context, cfg *config.Config, log *logging.Logger, runner JobRunner, job export.Job) export.Result {
	log.Info("Exporting %s -> %s", job.Name(), job.DestinationDir)

	info, err := archive.Inspect(job.SourcePath)
	if err != nil {
		log.Debug(cfg.Verbose, "  no archive metadata: %v", err)
	} else {
		log.Debug(cfg.Verbose, "  %s", info.Label())
	}

	if err := prepareDestination(job.DestinationDir, cfg.Existing); err != nil {
		res := export.Failed(job, export.KindSpawn, export.NoExitCode, 0,
			fmt.Sprintf("cannot prepare destination: %v", err))
		res.Archive = info
		return res
	}

	res := runner.Run(ctx, job)
	res.Archive = info
	return res
}

func cancelRemaining(log *logging.Logger, report *BatchReport, rest []export.Job) {
	log.Warn("Interrupted, %d job(s) not started", len(rest))
	for _, job := range rest {
		report.Add(export.Failed(job, export.KindCanceled, export.NoExitCode, 0, "not started"))
	}
}

// logResult prints the one-line outcome of a job, followed by the tail of
// the delegate output when it failed.
func logResult(log *logging.Logger, res export.Result, total int) {
	prefix := fmt.Sprintf("[%d/%d]", res.Job.Index, total)
	dur := display.FormatDuration(res.Duration)
	if res.OK() {
		log.Success("%s %s %s %s -> %s (%s)", prefix, display.MarkSuccess, res.Job.Name(), dur,
			filepath.Base(res.Artifact), display.FormatBytes(res.ArtifactSize))
		return
	}
	log.Error("%s %s %s %s %s: %s", prefix, display.MarkFailure, res.Job.Name(), dur,
		res.Kind.Label(), res.Detail)
	if res.Output != "" {
		log.Block(res.Output)
	}
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, n int) {
	log.Info("Found %d archive(s) in %s", n, cfg.InputDir)
	log.Info("Method: %s, signing: %s", cfg.Method, cfg.SigningStyle)
	if cfg.TeamID != "" {
		log.Info("Team: %s", cfg.TeamID)
	}
	log.Info("Output: %s (existing: %s)", cfg.OutputDir, cfg.Existing)
	if cfg.Timeout > 0 {
		log.Info("Timeout per job: %s", cfg.Timeout)
	}
	log.Debug(cfg.Verbose, "Delegate: %s (pty: %t)", cfg.Delegate, cfg.UsePTY)
}

func logSummary(log *logging.Logger, report *BatchReport) {
	ok, failed := len(report.Succeeded()), len(report.Failed())
	log.Info("==============================")
	log.Info("Done: %d exported, %d failed", ok, failed)
	log.Info("  Export time: %s (wall clock %s)",
		display.FormatDuration(report.TotalDuration()), display.FormatDuration(report.Elapsed))
	if report.Interrupted {
		log.Warn("  Batch was interrupted")
	}
}
