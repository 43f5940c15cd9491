package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"sjt-studio/internal/domain"
	"sjt-studio/internal/service"
)

// consoleObserver prints one progress line per model call.
type consoleObserver struct {
	out io.Writer
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out}
}

func (o *consoleObserver) OnAttempt(ev domain.ProgressEvent) {
	fmt.Fprintf(o.out, "[%d/%d] Generating SJT %d/%d for competency '%s'\n",
		ev.Done+1, ev.Total, ev.Attempt, ev.Attempts, ev.Competency)
}

func (o *consoleObserver) OnFailure(f domain.AttemptFailure) {
	fmt.Fprintf(o.out, "  warning: %s attempt %d skipped (%s): %s\n", f.Competency, f.Attempt, f.Code, f.Message)
}

func printProfiles(out io.Writer, profiles []domain.Profile, defaultName string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Profile", "Attempts", "Columns", "Description"})
	for _, p := range profiles {
		name := p.Name
		if p.Name == defaultName {
			name += " *"
		}
		tw.AppendRow(table.Row{name, p.Attempts, strings.Join(p.Schema.RequiredColumns(), ", "), p.Description})
	}
	tw.Render()
}

func printPreview(out io.Writer, run *service.PreparedRun) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Competency", "Rows", "Indicators", "Eligible"})
	var first *domain.CompetencyRecord
	for _, rec := range run.Records {
		tw.AppendRow(table.Row{rec.Name, joinInts(rec.SourceRows), strings.Join(rec.IndicatorTexts(), "\n"), rec.Eligible()})
		if first == nil && rec.Eligible() {
			first = rec
		}
	}
	tw.AppendFooter(table.Row{"Profile: " + run.Profile.Name, "", "", fmt.Sprintf("%d attempts each", run.Attempts)})
	tw.Render()

	if first == nil {
		fmt.Fprintln(out, "No competency has enough indicators to generate SJTs.")
		return
	}
	if unfilled := run.Template.Unfilled(first); len(unfilled) > 0 {
		fmt.Fprintf(out, "warning: placeholders without a value: %s\n", strings.Join(unfilled, ", "))
	}
	fmt.Fprintf(out, "\nPrompt for '%s':\n\n%s\n", first.Name, run.Template.Render(first))
}

func printReport(out io.Writer, report *domain.BatchReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendRows([]table.Row{
		{"Run", report.RunID},
		{"Profile", report.Profile},
		{"Eligible competencies", report.Eligible},
		{"Skipped competencies", len(report.Skipped)},
		{"Model calls", report.Attempts},
		{"SJTs", len(report.Rows)},
		{"Failures", len(report.Failures)},
		{"Elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Second)},
	})
	tw.Render()

	if len(report.Skipped) > 0 {
		st := table.NewWriter()
		st.SetOutputMirror(out)
		st.SetTitle("Skipped")
		st.AppendHeader(table.Row{"Competency", "Reason"})
		for _, s := range report.Skipped {
			st.AppendRow(table.Row{s.Competency, s.Reason})
		}
		st.Render()
	}
	if len(report.Failures) > 0 {
		ft := table.NewWriter()
		ft.SetOutputMirror(out)
		ft.SetTitle("Failures")
		ft.AppendHeader(table.Row{"Competency", "Attempt", "Code", "Message"})
		for _, f := range report.Failures {
			ft.AppendRow(table.Row{f.Competency, f.Attempt, f.Code, f.Message})
		}
		ft.Render()
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
