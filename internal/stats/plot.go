// Package stats renders analyses, traces and run history as terminal text.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
	// X holds optional x coordinates, one per value. Series without X are
	// spread evenly over the plot width.
	X []float64
	// Points draws markers without connecting lines.
	Points bool
}

type seriesMinMaxRange struct {
	min float64
	max float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

type plotOptions struct {
	width      int
	height     int
	shared     bool
	forceColor bool
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 8
	axisLabelTop        = "100%"
	axisLabelMid        = "50%"
	axisLabelBottom     = "0%"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	sharedScaleNote     = "Shared scale."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "green", code: "\x1b[32m"},
	{name: "red", code: "\x1b[31m"},
	{name: "blue", code: "\x1b[34m"},
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
}

// PlotSeries renders a multi-line text plot with each series scaled to its own range.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, plotOptions{width: width, height: height})
}

// PlotSeriesWithColor renders a per-series scaled plot with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, plotOptions{width: width, height: height, forceColor: forceColor})
}

// PlotSeriesShared renders all series against one value axis labelled in data units.
func PlotSeriesShared(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, plotOptions{width: width, height: height, shared: true, forceColor: forceColor})
}

func plotSeries(w io.Writer, title string, series []Series, opts plotOptions) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}

	height := opts.height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.width
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	xMin, xMax, hasX := xRange(series)

	prepared := make([]Series, 0, len(series))
	for _, s := range series {
		if s.X != nil {
			prepared = append(prepared, s)
			continue
		}
		prepared = append(prepared, Series{
			Name:   s.Name,
			Values: resampleSeries(s.Values, width),
			Points: s.Points,
		})
	}

	ranges := make([]seriesMinMaxRange, len(prepared))
	if opts.shared {
		minVal, maxVal := seriesMinMax(prepared)
		r := padRange(minVal, maxVal)
		for i := range ranges {
			ranges[i] = r
		}
	} else {
		for i, s := range prepared {
			minVal, maxVal := seriesMinMaxSingle(s.Values)
			ranges[i] = padRange(minVal, maxVal)
		}
	}

	dotRows := height * 4
	dotCols := width * 2
	seriesCells := make([][][]uint8, 0, len(prepared))
	for range prepared {
		seriesCells = append(seriesCells, makeCells(height, width))
	}
	for si, s := range prepared {
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for k, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				prevX, prevY = -1, -1
				continue
			}
			px := k * 2
			if hasX && s.X != nil {
				px = xToColumn(s.X[k], xMin, xMax, dotCols)
			}
			py := valueToRow(v, ranges[si].min, ranges[si].max, dotRows)
			if s.Points {
				setMarker(seriesCells[si], px, py)
				continue
			}
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(seriesCells[si], dx, dy)
					}
				})
			} else if style.shouldPlot(px) {
				setBrailleDot(seriesCells[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, opts.forceColor)
	var axisLabels []string
	if opts.shared {
		axisLabels = makeValueLabels(height, ranges[0])
	} else {
		axisLabels = makeAxisLabels(height)
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	note := scaleNote
	if opts.shared {
		note = sharedScaleNote
	}
	if _, err := fmt.Fprintln(w, note); err != nil {
		return err
	}
	for _, s := range series {
		if s.Points {
			continue
		}
		minVal, maxVal := seriesMinMaxSingle(s.Values)
		if _, err := fmt.Fprintf(w, "%s: min=%s max=%s\n", s.Name, formatAxisValue(minVal), formatAxisValue(maxVal)); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(axisLabels[y], axisLabelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				color := colorPalette[colorIdx%len(colorPalette)].code
				row.WriteString(color)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if hasX {
		if _, err := fmt.Fprintln(w, xAxisLine(xMin, xMax, width)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(prepared, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if s.X != nil && len(s.X) != len(s.Values) {
			n := min(len(s.X), len(s.Values))
			s.X = s.X[:n]
			s.Values = s.Values[:n]
		}
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func xRange(series []Series) (float64, float64, bool) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	found := false
	for _, s := range series {
		for _, x := range s.X {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			found = true
			minVal = math.Min(minVal, x)
			maxVal = math.Max(maxVal, x)
		}
	}
	if !found {
		return 0, 0, false
	}
	if maxVal-minVal < 1e-12 {
		minVal -= 0.5
		maxVal += 0.5
	}
	return minVal, maxVal, true
}

func xToColumn(x, minVal, maxVal float64, cols int) int {
	if cols <= 1 {
		return 0
	}
	col := int(math.Round((x - minVal) / (maxVal - minVal) * float64(cols-1)))
	if col < 0 {
		col = 0
	}
	if col >= cols {
		col = cols - 1
	}
	return col
}

func xAxisLine(minVal, maxVal float64, width int) string {
	left := formatAxisValue(minVal)
	right := formatAxisValue(maxVal)
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", axisLabelWidth+runewidth.StringWidth(axisSeparator)) + left + strings.Repeat(" ", gap) + right
}

func padRange(minVal, maxVal float64) seriesMinMaxRange {
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}
	return seriesMinMaxRange{min: minVal, max: maxVal}
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + runewidth.StringWidth(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colour should be written to w.
func ShouldUseColor(w io.Writer, force bool) bool {
	return shouldUseColor(w, force)
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

func makeValueLabels(height int, r seriesMinMaxRange) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(r.max)
	if height > 2 {
		labels[height/2] = formatAxisValue((r.min + r.max) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(r.min)
	}
	return labels
}

func formatAxisValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 4, 64)
	if len(s) > axisLabelWidth {
		s = strconv.FormatFloat(v, 'e', 1, 64)
	}
	return s
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges the dots of all series; the last series touching a cell
// decides its colour so markers stay visible over lines.
func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		colorIdx = i
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
			start := int(float64(i) * float64(len(values)) / float64(width))
			end := int(float64(i+1) * float64(len(values)) / float64(width))
			if end <= start {
				end = start + 1
			}
			if end > len(values) {
				end = len(values)
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	if width == 1 || len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func seriesMinMax(series []Series) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, s := range series {
		lo, hi := seriesMinMaxSingle(s.Values)
		if len(s.Values) == 0 {
			continue
		}
		minVal = math.Min(minVal, lo)
		maxVal = math.Max(maxVal, hi)
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

func seriesMinMaxSingle(values []float64) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == math.Inf(1) {
		minVal = 0
	}
	if maxVal == math.Inf(-1) {
		maxVal = 0
	}
	return minVal, maxVal
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		styleName := lineStyles[i%len(lineStyles)].name
		marker := brailleFromMask(0x01)
		if s.Points {
			styleName = "points"
			marker = brailleFromMask(0x1b)
		}
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, styleName)
		if useColor {
			color := colorPalette[i%len(colorPalette)].code
			label = color + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

// setMarker sets a 2x2 dot block so single samples remain visible.
func setMarker(cells [][]uint8, x, y int) {
	x -= x % 2
	for _, d := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		setBrailleDot(cells, x+d[0], y+d[1])
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) {
		return
	}
	if cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
