package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/store"
)

const (
	maxHistoryPairs = 4
	weakRunCount    = 3
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs        []model.RunSummary
	CurveWindow int
	GeneratedAt time.Time
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return Report{
		Runs:        runs,
		CurveWindow: cfg.CurveWindow,
		GeneratedAt: time.Now(),
	}, nil
}

// RenderHistory prints a table of runs, the moving-average offset curve of each
// pair and the runs with the weakest correlation.
func RenderHistory(w io.Writer, report Report, totalWidth int, useColor bool) error {
	if len(report.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	labels := TopPairLabels(report.Runs, maxHistoryPairs)

	if _, err := fmt.Fprintln(w, historyTable(report, labels, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if len(report.Runs) > 1 {
		width := 0
		if totalWidth > 0 {
			width = PlotWidthFor(totalWidth)
		}
		series := make([]Series, 0, len(labels))
		for _, label := range labels {
			series = append(series, Series{
				Name:   label,
				Values: MovingAverage(offsetSeries(report.Runs, label), report.CurveWindow),
			})
		}
		title := "Offset trend (ms)"
		if report.CurveWindow > 1 {
			title = fmt.Sprintf("Offset trend (ms, moving average of %d)", report.CurveWindow)
		}
		if err := PlotSeriesShared(w, title, series, width, defaultPlotHeight, useColor); err != nil {
			return err
		}
	}

	weak := SelectWeakRuns(report.Runs, weakRunCount)
	if len(weak) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Lowest correlation"); err != nil {
		return err
	}
	for _, r := range weak {
		p := weakestPair(r)
		if _, err := fmt.Fprintf(w, "  run %d  %s  score=%.4f  %s\n", r.RunID, p.Label(), p.Score, r.LogPath); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func historyTable(report Report, labels []string, useColor bool) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Options.SeparateRows = false
	if useColor {
		tbl.Style().Color.Header = text.Colors{text.Bold}
	}

	header := table.Row{"ID", "Analyzed", "Joint", "Samples", "Mean dt (ms)"}
	for _, label := range labels {
		header = append(header, label)
	}
	header = append(header, "Stuck cmd/ref/pos")
	tbl.AppendHeader(header)

	configs := []table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	}
	for i := range labels {
		configs = append(configs, table.ColumnConfig{Number: 6 + i, Align: text.AlignRight})
	}
	tbl.SetColumnConfigs(configs)

	for _, r := range report.Runs {
		row := table.Row{
			r.RunID,
			humanize.RelTime(r.AnalyzedAt, report.GeneratedAt, "ago", "from now"),
			r.Joint,
			humanize.Comma(int64(r.Samples)),
			fmt.Sprintf("%.3f", r.MeanDt*secondsToMilli),
		}
		for _, label := range labels {
			row = append(row, pairCell(r, label))
		}
		counts := make([]string, 0, len(model.SignalNames))
		for _, name := range model.SignalNames {
			counts = append(counts, fmt.Sprintf("%d", r.Stuck[name]))
		}
		row = append(row, strings.Join(counts, "/"))
		tbl.AppendRow(row)
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d runs", len(report.Runs))})
	return tbl.Render()
}

func pairCell(run model.RunSummary, label string) string {
	for _, p := range run.Pairs {
		if p.Label() == label {
			return fmt.Sprintf("%d / %.2f ms", p.Shift, p.TimeOffset*secondsToMilli)
		}
	}
	return "-"
}

// offsetSeries returns the offset in ms of label for each run. Runs without
// the pair repeat the previous value.
func offsetSeries(runs []model.RunSummary, label string) []float64 {
	out := make([]float64, len(runs))
	for i, r := range runs {
		if i > 0 {
			out[i] = out[i-1]
		}
		for _, p := range r.Pairs {
			if p.Label() == label {
				out[i] = p.TimeOffset * secondsToMilli
				break
			}
		}
	}
	return out
}
