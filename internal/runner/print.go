package runner

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/hookfang/internal/hooks"
)

// printDiagnostics writes one path:line:col: message line per finding,
// grouped by hook in run order.
func (r *Runner) printDiagnostics(summary Summary) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)

	if r.opts.NoColor || r.cfg.NoColor {
		errColor.DisableColor()
		warnColor.DisableColor()
	}

	for _, report := range summary.Reports {
		for _, finding := range report.Findings {
			label := errColor.Sprint("error")
			if finding.Severity == hooks.SeverityWarning {
				label = warnColor.Sprint("warning")
			}

			fmt.Fprintf(r.out, "%s: %s: %s\n", position(finding), label, finding.Message)
		}
	}
}

// position renders path:line:col, dropping the zero parts for whole-file
// findings.
func position(finding hooks.Finding) string {
	if finding.Line <= 0 {
		return finding.Path
	}

	if finding.Column <= 0 {
		return fmt.Sprintf("%s:%d", finding.Path, finding.Line)
	}

	return fmt.Sprintf("%s:%d:%d", finding.Path, finding.Line, finding.Column)
}

// printSummary renders the run totals as a compact table.
func (r *Runner) printSummary(summary Summary) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"files", "clean", "findings", "parse failures", "duration"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(summary.Files)),
		humanize.Comma(int64(summary.Clean)),
		humanize.Comma(int64(summary.Findings)),
		humanize.Comma(int64(summary.ParseFailures)),
		summary.Duration.Round(summary.Duration / 100).String(),
	})

	verdicts := make([]string, 0, len(summary.Reports))
	for _, report := range summary.Reports {
		verdict := "passed"
		if !report.Passed {
			verdict = "failed"
		}

		verdicts = append(verdicts, fmt.Sprintf("%s: %s", report.Hook, verdict))
	}

	tbl.AppendFooter(table.Row{strings.Join(verdicts, "  ")})

	fmt.Fprintf(r.out, "\n%s\n", tbl.Render())
}
