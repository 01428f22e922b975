package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/backmassage/arc2ipa/internal/display"
)

const statusCol = 2

// WriteSummary renders the batch summary: one table row per job followed
// by counts and timings. It is written even when every job failed.
func WriteSummary(w io.Writer, report *BatchReport) {
	if report.NoInputs {
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		mark, outcome := display.MarkSuccess, filepath.Base(r.Artifact)
		if r.OK() {
			outcome += " (" + display.FormatBytes(r.ArtifactSize) + ")"
		} else {
			mark, outcome = display.MarkFailure, r.Kind.Label()+": "+r.Detail
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Job.Index),
			r.Job.Name(),
			mark,
			display.FormatDuration(r.Duration),
			outcome,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(display.SubtitleStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return display.HeaderStyle
			case col == statusCol && row >= 0 && row < len(report.Results):
				if report.Results[row].OK() {
					return display.CellStyle.Foreground(display.ColorSuccess)
				}
				return display.CellStyle.Foreground(display.ColorError)
			default:
				return display.CellStyle
			}
		}).
		Headers("#", "Archive", "", "Time", "Result").
		Rows(rows...)

	ok, failed := len(report.Succeeded()), len(report.Failed())
	fmt.Fprintln(w)
	fmt.Fprintln(w, display.TitleStyle.Render("Summary"))
	fmt.Fprintln(w, t.Render())

	counts := display.SuccessStyle.Render(fmt.Sprintf("%d succeeded", ok))
	if failed > 0 {
		counts += ", " + display.ErrorStyle.Render(fmt.Sprintf("%d failed", failed))
	} else {
		counts += ", 0 failed"
	}
	fmt.Fprintf(w, "%s of %d  │  export time %s  │  elapsed %s\n",
		counts, len(report.Results),
		display.FormatDuration(report.TotalDuration()),
		display.FormatDuration(report.Elapsed))
	if report.Interrupted {
		fmt.Fprintln(w, display.WarningStyle.Render("Batch interrupted; unstarted jobs are marked canceled."))
	}
}
