package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

const (
	sparkChars     = " .:-=+*#%@"
	sparkWidth     = 40
	lowScore       = 0.9
	secondsToMilli = 1000
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func paint(useColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// RenderSummary prints the sample statistics, lag estimates and stuck counts.
func RenderSummary(w io.Writer, log model.Log, analysis model.Analysis, useColor bool) error {
	bold := paint(useColor, color.Bold)
	warn := paint(useColor, color.FgYellow)
	bad := paint(useColor, color.FgRed)

	name := analysis.LogPath
	if analysis.Joint != "" {
		name = fmt.Sprintf("%s (joint %s)", name, analysis.Joint)
	}
	if _, err := bold.Fprintf(w, "Log: %s\n", name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Samples: %s\n", humanize.Comma(int64(analysis.Samples))); err != nil {
		return err
	}
	dt := signal.Diff(log.Time)
	if _, err := fmt.Fprintf(w, "Mean dt: %.3f ms  %s\n", analysis.MeanDt*secondsToMilli, Sparkline(resampleSeries(dt, min(sparkWidth, len(dt))))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Window: [%d, %d)  Shifts: [%d, %d)\n\n",
		analysis.Window.Start, analysis.Window.End, analysis.Shifts.Min, analysis.Shifts.Max); err != nil {
		return err
	}

	if _, err := bold.Fprintln(w, "Lag estimates"); err != nil {
		return err
	}
	pairRows := make([][]string, 0, len(analysis.Pairs))
	for _, p := range analysis.Pairs {
		pairRows = append(pairRows, []string{
			p.Label(),
			fmt.Sprintf("%d", p.Shift),
			fmt.Sprintf("%.4f", p.Score),
			fmt.Sprintf("%.3f", p.TimeOffset*secondsToMilli),
		})
	}
	lines := formatTable([]string{"Pair", "Shift", "Score", "Offset (ms)"}, pairRows, map[int]bool{1: true, 2: true, 3: true})
	for i, line := range lines {
		c := bold
		if i > 0 {
			c = paint(false)
			if analysis.Pairs[i-1].Score < lowScore {
				c = warn
			}
		}
		if _, err := c.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if _, err := bold.Fprintf(w, "Stuck samples (|dx| < %g)\n", analysis.Epsilon); err != nil {
		return err
	}
	steps := max(analysis.Samples-1, 1)
	stuckRows := make([][]string, 0, len(analysis.Stuck))
	for _, s := range analysis.Stuck {
		stuckRows = append(stuckRows, []string{
			s.Signal,
			humanize.Comma(int64(s.Count)),
			fmt.Sprintf("%.2f%%", float64(s.Count)/float64(steps)*100),
		})
	}
	lines = formatTable([]string{"Signal", "Count", "Share"}, stuckRows, map[int]bool{1: true, 2: true})
	for i, line := range lines {
		c := bold
		if i > 0 {
			c = paint(false)
			if analysis.Stuck[i-1].Count > 0 {
				c = bad
			}
		}
		if _, err := c.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderStuckSamples lists the stuck-sample midpoints per signal, at most limit
// per signal when limit is positive.
func RenderStuckSamples(w io.Writer, analysis model.Analysis, limit int) error {
	found := false
	for _, s := range analysis.Stuck {
		if s.Count == 0 {
			continue
		}
		found = true
		if _, err := fmt.Fprintf(w, "%s: %d stuck samples\n", s.Signal, s.Count); err != nil {
			return err
		}
		shown := s.Samples
		if limit > 0 && len(shown) > limit {
			shown = shown[:limit]
		}
		for _, sample := range shown {
			if _, err := fmt.Fprintf(w, "  #%-6d t=%.4f s  value=%.6g\n", sample.Index, sample.Time, sample.Value); err != nil {
				return err
			}
		}
		if rest := len(s.Samples) - len(shown); rest > 0 {
			if _, err := fmt.Fprintf(w, "  ... and %d more\n", rest); err != nil {
				return err
			}
		}
	}
	if !found {
		_, err := fmt.Fprintln(w, "No stuck samples found.")
		return err
	}
	return nil
}

// RenderTraces plots the sample interval and the cmd/ref/pos traces with stuck
// markers. With withRate a third panel shows dx/dt of each signal.
func RenderTraces(w io.Writer, log model.Log, analysis model.Analysis, totalWidth, height int, useColor, withRate bool) error {
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}

	dt := signal.Diff(log.Time)
	dtMs := make([]float64, len(dt))
	for i, v := range dt {
		dtMs[i] = v * secondsToMilli
	}
	if err := PlotSeriesWithColor(w, "Sample interval", []Series{
		{Name: "dt (ms)", Values: dtMs, X: log.Time[min(1, len(log.Time)):]},
	}, width, height, useColor); err != nil {
		return err
	}

	if err := PlotSeriesShared(w, "Traces", traceSeries(log, analysis), width, height, useColor); err != nil {
		return err
	}

	if !withRate {
		return nil
	}
	rates := make([]Series, 0, len(model.SignalNames))
	for _, name := range model.SignalNames {
		values, _ := log.Signal(name)
		rate, err := signal.Rate(log.Time, values)
		if err != nil {
			return err
		}
		rates = append(rates, Series{Name: name, Values: rate, X: log.Time[min(1, len(log.Time)):]})
	}
	return PlotSeriesShared(w, "Rate (dx/dt)", rates, width, height, useColor)
}

func traceSeries(log model.Log, analysis model.Analysis) []Series {
	series := make([]Series, 0, 2*len(model.SignalNames))
	for _, name := range model.SignalNames {
		values, _ := log.Signal(name)
		series = append(series, Series{Name: name, Values: values, X: log.Time})
	}
	for _, name := range model.SignalNames {
		stuck, ok := analysis.StuckFor(name)
		if !ok || stuck.Count == 0 {
			continue
		}
		xs := make([]float64, len(stuck.Samples))
		ys := make([]float64, len(stuck.Samples))
		for i, s := range stuck.Samples {
			xs[i] = s.Time
			ys[i] = s.Value
		}
		series = append(series, Series{Name: "stuck " + name, Values: ys, X: xs, Points: true})
	}
	return series
}
