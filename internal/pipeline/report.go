package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
)

// BatchReport aggregates the results of one batch. Results are kept in
// discovery order; each is appended once and not modified afterwards.
type BatchReport struct {
	RunID     uuid.UUID
	Method    config.Method
	Input     string
	Output    string
	StartedAt time.Time
	Results   []export.Result

	// Elapsed is the wall-clock span of the batch, as opposed to
	// TotalDuration which only counts time spent inside the delegate.
	Elapsed     time.Duration
	Interrupted bool
	NoInputs    bool
}

// NewBatchReport starts a report for cfg.
func NewBatchReport(cfg *config.Config) *BatchReport {
	return &BatchReport{
		RunID:     uuid.New(),
		Method:    cfg.Method,
		Input:     cfg.InputDir,
		Output:    cfg.OutputDir,
		StartedAt: time.Now(),
	}
}

// Add appends r.
func (b *BatchReport) Add(r export.Result) {
	b.Results = append(b.Results, r)
}

// Succeeded returns the successful results, in order.
func (b *BatchReport) Succeeded() []export.Result {
	return b.filter(true)
}

// Failed returns the failed results, in order.
func (b *BatchReport) Failed() []export.Result {
	return b.filter(false)
}

func (b *BatchReport) filter(ok bool) []export.Result {
	var out []export.Result
	for _, r := range b.Results {
		if r.OK() == ok {
			out = append(out, r)
		}
	}
	return out
}

// TotalDuration is the sum of all job durations.
func (b *BatchReport) TotalDuration() time.Duration {
	var d time.Duration
	for _, r := range b.Results {
		d += r.Duration
	}
	return d
}

// OK reports whether every job succeeded. A batch with no inputs is OK.
func (b *BatchReport) OK() bool {
	return !b.Interrupted && len(b.Failed()) == 0
}

// finish fixes Elapsed; later calls keep the first value.
func (b *BatchReport) finish() {
	if b.Elapsed == 0 {
		b.Elapsed = time.Since(b.StartedAt)
	}
}
