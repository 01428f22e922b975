// Package report writes a machine-readable copy of a batch report. The
// format follows the file extension: .yaml/.yml, .toml or .json.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/arc2ipa/internal/archive"
	"github.com/backmassage/arc2ipa/internal/export"
	"github.com/backmassage/arc2ipa/internal/pipeline"
)

// ErrUnknownFormat is returned for report paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unsupported report format (use .yaml, .yml, .toml or .json)")

// Format is a report encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding for path from its extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Document is the serialized form of a batch.
type Document struct {
	RunID         string  `json:"run_id" yaml:"run_id" toml:"run_id"`
	Method        string  `json:"method" yaml:"method" toml:"method"`
	Input         string  `json:"input" yaml:"input" toml:"input"`
	Output        string  `json:"output" yaml:"output" toml:"output"`
	StartedAt     string  `json:"started_at" yaml:"started_at" toml:"started_at"`
	Elapsed       float64 `json:"elapsed_seconds" yaml:"elapsed_seconds" toml:"elapsed_seconds"`
	TotalDuration float64 `json:"total_duration_seconds" yaml:"total_duration_seconds" toml:"total_duration_seconds"`
	Succeeded     int     `json:"succeeded" yaml:"succeeded" toml:"succeeded"`
	Failed        int     `json:"failed" yaml:"failed" toml:"failed"`
	Interrupted   bool    `json:"interrupted" yaml:"interrupted" toml:"interrupted"`
	NoInputs      bool    `json:"no_inputs" yaml:"no_inputs" toml:"no_inputs"`
	Jobs          []Job   `json:"jobs" yaml:"jobs" toml:"jobs"`
}

// Job is one result in a Document.
type Job struct {
	Index        int     `json:"index" yaml:"index" toml:"index"`
	Archive      string  `json:"archive" yaml:"archive" toml:"archive"`
	Destination  string  `json:"destination" yaml:"destination" toml:"destination"`
	Status       string  `json:"status" yaml:"status" toml:"status"`
	Kind         string  `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	ExitCode     int     `json:"exit_code" yaml:"exit_code" toml:"exit_code"`
	Duration     float64 `json:"duration_seconds" yaml:"duration_seconds" toml:"duration_seconds"`
	Detail       string  `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Artifact     string  `json:"artifact,omitempty" yaml:"artifact,omitempty" toml:"artifact,omitempty"`
	ArtifactSize int64   `json:"artifact_size,omitempty" yaml:"artifact_size,omitempty" toml:"artifact_size,omitempty"`
	App          *App    `json:"app,omitempty" yaml:"app,omitempty" toml:"app,omitempty"`
}

// App is the archive metadata attached to a Job, when it was readable.
type App struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Scheme    string `json:"scheme,omitempty" yaml:"scheme,omitempty" toml:"scheme,omitempty"`
	BundleID  string `json:"bundle_id,omitempty" yaml:"bundle_id,omitempty" toml:"bundle_id,omitempty"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Build     string `json:"build,omitempty" yaml:"build,omitempty" toml:"build,omitempty"`
	Team      string `json:"team,omitempty" yaml:"team,omitempty" toml:"team,omitempty"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty" toml:"created_at,omitempty"`
}

// NewDocument converts r.
func NewDocument(r *pipeline.BatchReport) Document {
	doc := Document{
		RunID:         r.RunID.String(),
		Method:        string(r.Method),
		Input:         r.Input,
		Output:        r.Output,
		StartedAt:     r.StartedAt.UTC().Format(time.RFC3339),
		Elapsed:       seconds(r.Elapsed),
		TotalDuration: seconds(r.TotalDuration()),
		Succeeded:     len(r.Succeeded()),
		Failed:        len(r.Failed()),
		Interrupted:   r.Interrupted,
		NoInputs:      r.NoInputs,
		Jobs:          make([]Job, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		doc.Jobs = append(doc.Jobs, newJob(res))
	}
	return doc
}

func newJob(res export.Result) Job {
	return Job{
		Index:        res.Job.Index,
		Archive:      res.Job.SourcePath,
		Destination:  res.Job.DestinationDir,
		Status:       string(res.Status),
		Kind:         string(res.Kind),
		ExitCode:     res.ExitCode,
		Duration:     seconds(res.Duration),
		Detail:       res.Detail,
		Artifact:     res.Artifact,
		ArtifactSize: res.ArtifactSize,
		App:          newApp(res.Archive),
	}
}

func newApp(info *archive.Info) *App {
	if info == nil {
		return nil
	}
	app := &App{
		Name:     info.Name,
		Scheme:   info.Scheme,
		BundleID: info.BundleID,
		Version:  info.Version,
		Build:    info.Build,
		Team:     info.Team,
	}
	if !info.CreatedAt.IsZero() {
		app.CreatedAt = info.CreatedAt.UTC().Format(time.RFC3339)
	}
	return app
}

func seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}

// Marshal encodes r in format f.
func Marshal(r *pipeline.BatchReport, f Format) ([]byte, error) {
	doc := NewDocument(r)
	switch f {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Write encodes r into path, creating parent directories as needed.
func Write(path string, r *pipeline.BatchReport) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(r, f)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
