package export

import (
	"path/filepath"
	"time"

	"github.com/backmassage/arc2ipa/internal/archive"
	"github.com/backmassage/arc2ipa/internal/config"
)

// Job is one archive-to-package export. It is built once by [Builder] and
// passed by value afterwards, so no stage can mutate another stage's copy.
type Job struct {
	Index          int // 1-based position in discovery order.
	SourcePath     string
	DestinationDir string
	Method         config.Method
	Options        Options
}

// Name returns the archive's file name, e.g. "MyApp.xcarchive".
func (j Job) Name() string { return filepath.Base(j.SourcePath) }

// Status is the outcome of a job.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Kind classifies why a job failed. It is empty for successful jobs.
type Kind string

const (
	KindNone      Kind = ""
	KindSpawn     Kind = "spawn-failure"     // Delegate could not be launched.
	KindExecution Kind = "execution-failure" // Delegate exited nonzero or produced no package.
	KindTimeout   Kind = "timeout"           // Configured timeout fired.
	KindCanceled  Kind = "canceled"          // Batch interrupted before or during the job.
)

// Label returns a human-readable form of the kind.
func (k Kind) Label() string {
	switch k {
	case KindSpawn:
		return "spawn failure"
	case KindExecution:
		return "execution failure"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return ""
	}
}

// NoExitCode marks a job whose delegate never produced an exit status.
const NoExitCode = -1

// Result is the outcome of one Job. The runner creates it; after that it is
// only read.
type Result struct {
	Job      Job
	Status   Status
	Duration time.Duration
	ExitCode int
	Kind     Kind
	Detail   string // One-line reason for a failure.
	Output   string // Tail of delegate output, kept for failures.

	Artifact     string // Path of the produced .ipa.
	ArtifactSize int64

	Archive *archive.Info // Archive metadata, when readable.
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Failed builds a failure result.
func Failed(job Job, kind Kind, exitCode int, d time.Duration, detail string) Result {
	return Result{
		Job:      job,
		Status:   StatusFailure,
		Duration: d,
		ExitCode: exitCode,
		Kind:     kind,
		Detail:   detail,
	}
}

// Succeeded builds a success result for the package at artifact.
func Succeeded(job Job, d time.Duration, artifact string, size int64) Result {
	return Result{
		Job:          job,
		Status:       StatusSuccess,
		Duration:     d,
		Artifact:     artifact,
		ArtifactSize: size,
	}
}
