package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/arc2ipa/internal/archive"
	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
	"github.com/backmassage/arc2ipa/internal/pipeline"
)

func sampleReport() *pipeline.BatchReport {
	a := export.Job{Index: 1, SourcePath: "/in/A.xcarchive", DestinationDir: "/out/A", Method: config.MethodAdHoc}
	b := export.Job{Index: 2, SourcePath: "/in/B.xcarchive", DestinationDir: "/out/B", Method: config.MethodAdHoc}

	ok := export.Succeeded(a, 2*time.Second, "/out/A/A.ipa", 2048)
	ok.Archive = &archive.Info{BundleID: "com.example.a", Version: "1.0", Build: "7"}
	bad := export.Failed(b, export.KindExecution, 70, 3*time.Second, "exit status 70")

	return &pipeline.BatchReport{
		RunID:     uuid.MustParse("6f1c2f43-58a5-4c1d-9a77-3c8f0f5c2b10"),
		Method:    config.MethodAdHoc,
		Input:     "/in",
		Output:    "/out",
		StartedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Results:   []export.Result{ok, bad},
		Elapsed:   5500 * time.Millisecond,
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"r.yaml": FormatYAML, "r.YML": FormatYAML, "r.toml": FormatTOML, "out/r.json": FormatJSON,
	}
	for path, want := range tests {
		if got, err := FormatFor(path); err != nil || got != want {
			t.Errorf("FormatFor(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatFor("report.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("txt: err = %v", err)
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleReport())
	if doc.Succeeded != 1 || doc.Failed != 1 || len(doc.Jobs) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.TotalDuration != 5 || doc.Elapsed != 5.5 {
		t.Errorf("total=%v elapsed=%v", doc.TotalDuration, doc.Elapsed)
	}
	if doc.StartedAt != "2026-05-01T12:00:00Z" || doc.Method != "ad-hoc" {
		t.Errorf("started=%s method=%s", doc.StartedAt, doc.Method)
	}
	if doc.Jobs[0].App == nil || doc.Jobs[0].App.BundleID != "com.example.a" {
		t.Errorf("app = %+v", doc.Jobs[0].App)
	}
	if doc.Jobs[1].App != nil || doc.Jobs[1].Kind != "execution-failure" || doc.Jobs[1].ExitCode != 70 {
		t.Errorf("failed job = %+v", doc.Jobs[1])
	}
}

func TestWrite_EachFormat(t *testing.T) {
	dir := t.TempDir()
	decoders := map[string]func([]byte, interface{}) error{
		"report.yaml": yaml.Unmarshal,
		"report.toml": toml.Unmarshal,
		"report.json": json.Unmarshal,
	}
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			if err := Write(path, sampleReport()); err != nil {
				t.Fatalf("Write: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var got Document
			if err := decode(data, &got); err != nil {
				t.Fatalf("decode: %v\n%s", err, data)
			}
			if got.RunID != "6f1c2f43-58a5-4c1d-9a77-3c8f0f5c2b10" || len(got.Jobs) != 2 {
				t.Errorf("decoded = %+v", got)
			}
			if got.Jobs[1].Detail != "exit status 70" || got.Jobs[0].Artifact != "/out/A/A.ipa" {
				t.Errorf("jobs = %+v", got.Jobs)
			}
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := Write(path, sampleReport()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written for unknown format")
	}
}
