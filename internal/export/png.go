package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

// Default figure size in points.
const (
	DefaultPNGWidth  = 800
	DefaultPNGHeight = 600
)

var signalColors = map[string]color.RGBA{
	model.SignalCmd: {G: 0x80, A: 0xff},
	model.SignalRef: {R: 0xd0, A: 0xff},
	model.SignalPos: {B: 0xd0, A: 0xff},
}

// WritePNG draws a two-row figure: the sample interval over time on top and
// the cmd/ref/pos traces with hollow stuck markers below.
func WritePNG(w io.Writer, log model.Log, analysis model.Analysis, widthPt, heightPt float64) error {
	if widthPt <= 0 {
		widthPt = DefaultPNGWidth
	}
	if heightPt <= 0 {
		heightPt = DefaultPNGHeight
	}

	top, err := intervalPlot(log)
	if err != nil {
		return err
	}
	bottom, err := tracesPlot(log, analysis)
	if err != nil {
		return err
	}

	img := vgimg.New(vg.Points(widthPt), vg.Points(heightPt))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func intervalPlot(log model.Log) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sample interval"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "dt (s)"

	dt := signal.Diff(log.Time)
	pts := make(plotter.XYs, len(dt))
	for i, v := range dt {
		pts[i].X = log.Time[i+1]
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("interval line: %w", err)
	}
	p.Add(line)
	return p, nil
}

func tracesPlot(log model.Log, analysis model.Analysis) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Traces"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Angle (rad)"
	p.Legend.Top = true

	for _, name := range model.SignalNames {
		values, _ := log.Signal(name)
		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i].X = log.Time[i]
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", name, err)
		}
		line.Color = signalColors[name]
		p.Add(line)
		p.Legend.Add(name, line)
	}

	for _, name := range model.SignalNames {
		stuck, ok := analysis.StuckFor(name)
		if !ok || stuck.Count == 0 {
			continue
		}
		pts := make(plotter.XYs, len(stuck.Samples))
		for i, s := range stuck.Samples {
			pts[i].X = s.Time
			pts[i].Y = s.Value
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("%s markers: %w", name, err)
		}
		scatter.GlyphStyle.Shape = draw.RingGlyph{}
		scatter.GlyphStyle.Color = signalColors[name]
		scatter.GlyphStyle.Radius = vg.Points(signalStyles[name].markerSize / 2)
		p.Add(scatter)
	}
	return p, nil
}
