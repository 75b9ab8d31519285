package runner

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// topOffenders caps how many files the per-file chart shows.
const topOffenders = 15

// writeReport renders the run as an HTML page with a findings-per-hook bar
// chart and the top offending files.
func (r *Runner) writeReport(summary Summary) error {
	page := components.NewPage()
	page.PageTitle = "hookfang report"

	page.AddCharts(
		findingsPerHookChart(summary),
		topFilesChart(summary),
	)

	file, err := os.Create(r.opts.ReportPath)
	if err != nil {
		return fmt.Errorf("create report %s: %w", r.opts.ReportPath, err)
	}
	defer file.Close()

	if renderErr := page.Render(file); renderErr != nil {
		return fmt.Errorf("render report: %w", renderErr)
	}

	r.logger.Info("report written", "path", r.opts.ReportPath)

	return nil
}

func findingsPerHookChart(summary Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Findings per hook"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(summary.Reports))
	data := make([]opts.BarData, 0, len(summary.Reports))

	for _, report := range summary.Reports {
		labels = append(labels, report.Hook)
		data = append(data, opts.BarData{Value: len(report.Findings)})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("findings", data)

	return bar
}

func topFilesChart(summary Summary) *charts.Bar {
	counts := make(map[string]int)

	for _, report := range summary.Reports {
		for _, finding := range report.Findings {
			counts[finding.Path]++
		}
	}

	type fileCount struct {
		path  string
		count int
	}

	ranked := make([]fileCount, 0, len(counts))
	for path, count := range counts {
		ranked = append(ranked, fileCount{path: path, count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}

		return ranked[i].path < ranked[j].path
	})

	if len(ranked) > topOffenders {
		ranked = ranked[:topOffenders]
	}

	labels := make([]string, 0, len(ranked))
	data := make([]opts.BarData, 0, len(ranked))

	for _, fc := range ranked {
		labels = append(labels, fc.path)
		data = append(data, opts.BarData{Value: fc.count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Top offending files"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("findings", data)

	return bar
}
