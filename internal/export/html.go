// Package export writes analyses as HTML charts, PNG figures and structured data.
package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
	lineWidth   = 1.5
)

// signalStyle is the colour and stuck-marker size of each signal.
type signalStyle struct {
	color      string
	markerSize float64
}

var signalStyles = map[string]signalStyle{
	model.SignalCmd: {color: "#2ca02c", markerSize: 3},
	model.SignalRef: {color: "#d62728", markerSize: 6},
	model.SignalPos: {color: "#1f77b4", markerSize: 12},
}

// WriteHTML renders an interactive page with the sample interval chart and the
// traces chart. Stuck samples are overlaid as hollow markers.
func WriteHTML(w io.Writer, log model.Log, analysis model.Analysis) error {
	page := components.NewPage()
	page.PageTitle = "sinecheck: " + analysis.LogPath
	page.AddCharts(
		intervalChart(log),
		tracesChart(log, analysis),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func baseLine(title, subtitle, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName, Scale: opts.Bool(true)}),
	)
	return line
}

func intervalChart(log model.Log) *charts.Line {
	dt := signal.Diff(log.Time)
	data := make([]opts.LineData, len(dt))
	for i, v := range dt {
		data[i] = opts.LineData{Value: []any{log.Time[i+1], v}}
	}
	line := baseLine("Sample interval", fmt.Sprintf("mean dt %.6f s", signal.MeanInterval(log.Time)), "dt (s)")
	line.AddSeries("dt", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	return line
}

func tracesChart(log model.Log, analysis model.Analysis) *charts.Line {
	subtitle := ""
	for i, p := range analysis.Pairs {
		if i > 0 {
			subtitle += "  "
		}
		subtitle += fmt.Sprintf("%s: %d samples (%.1f ms)", p.Label(), p.Shift, p.TimeOffset*1000)
	}
	line := baseLine("Traces", subtitle, "Angle (rad)")
	for _, name := range model.SignalNames {
		values, _ := log.Signal(name)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: []any{log.Time[i], v}}
		}
		line.AddSeries(name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: signalStyles[name].color}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}

	scatter := charts.NewScatter()
	markers := 0
	for _, name := range model.SignalNames {
		stuck, ok := analysis.StuckFor(name)
		if !ok || stuck.Count == 0 {
			continue
		}
		style := signalStyles[name]
		data := make([]opts.ScatterData, len(stuck.Samples))
		for i, s := range stuck.Samples {
			data[i] = opts.ScatterData{
				Value:      []any{s.Time, s.Value},
				Symbol:     "emptyCircle",
				SymbolSize: int(style.markerSize * 2),
			}
		}
		scatter.AddSeries("stuck "+name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: style.color}),
		)
		markers++
	}
	if markers > 0 {
		line.Overlap(scatter)
	}
	return line
}
