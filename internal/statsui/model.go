// Package statsui provides the Bubble Tea analysis viewer.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/sinecheck/internal/analysis"
	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
	"github.com/verte-zerg/sinecheck/internal/stats"
	"github.com/verte-zerg/sinecheck/internal/store"
)

const (
	tabOverview = iota
	tabTraces
	tabStuck
	tabHistory
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea analysis viewer.
type Model struct {
	analyzer *analysis.Analyzer
	store    *store.Store
	log      model.Log
	cfg      model.AnalysisConfig
	histCfg  model.HistoryConfig

	result model.Analysis
	report stats.Report
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	stuckTable  table.Model
	stuckLayout tableLayout
	withRate    bool

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel analyses log with cfg and constructs the viewer. st may be nil, in
// which case the History tab is empty.
func NewModel(analyzer *analysis.Analyzer, st *store.Store, log model.Log, cfg model.AnalysisConfig, histCfg model.HistoryConfig) *Model {
	if analyzer == nil {
		analyzer = analysis.New(nil)
	}
	if histCfg.Joint == "" {
		histCfg.Joint = log.Joint
	}
	m := &Model{
		analyzer: analyzer,
		store:    st,
		log:      log,
		cfg:      cfg,
		histCfg:  histCfg,
		tabs:     []string{"Overview", "Traces", "Stuck", "History"},
	}
	m.initInputs()
	m.stuckTable = buildStuckTable(nil, 0, 1)
	m.initViewports()
	m.rerun()
	m.refreshHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.activeTab == tabStuck {
			m.stuckTable.Focus()
		} else {
			m.stuckTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			m.moveWindow(-1)
			return m, nil
		case "]":
			m.moveWindow(1)
			return m, nil
		case "r":
			m.withRate = !m.withRate
			m.renderTabContents()
			return m, nil
		case "=":
			m.histCfg.CurveWindow = nextCurveWindow(m.histCfg.CurveWindow)
			m.refreshHistory()
			return m, nil
		case "-":
			m.histCfg.CurveWindow = prevCurveWindow(m.histCfg.CurveWindow)
			m.refreshHistory()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabStuck {
				m.stuckTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabStuck {
				m.stuckTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabStuck {
				var cmd tea.Cmd
				m.stuckTable, cmd = m.stuckTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Analysis returns the most recent successful analysis.
func (m *Model) Analysis() model.Analysis {
	return m.result
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Window start: "),
		newFilterInput("Window end: "),
		newFilterInput("Min shift: "),
		newFilterInput("Max shift: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	window := m.result.Window
	if m.cfg.WindowEnd > 0 {
		window = signal.Window{Start: m.cfg.WindowStart, End: m.cfg.WindowEnd}
	}
	m.filterInputs[0].SetValue(strconv.Itoa(window.Start))
	m.filterInputs[1].SetValue(strconv.Itoa(window.End))
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.MinShift))
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.MaxShift))
	m.filterInputs[4].SetValue(strconv.Itoa(m.histCfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setStuckTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabStuck {
		m.stuckTable.Focus()
	} else {
		m.stuckTable.Blur()
	}
}

// moveWindow slides the correlation window by a quarter of its length and
// re-runs the estimation.
func (m *Model) moveWindow(direction int) {
	current := m.result.Window
	step := maxInt(1, current.Len()/4)
	shifts := signal.ShiftRange{Min: m.cfg.MinShift, Max: m.cfg.MaxShift}
	if m.result.Shifts != (signal.ShiftRange{}) {
		shifts = m.result.Shifts
	}
	next, ok := shiftWindow(current, direction*step, m.log.Len(), shifts)
	if !ok {
		m.errMsg = "window is already at the edge of the log"
		return
	}
	m.cfg.WindowStart = next.Start
	m.cfg.WindowEnd = next.End
	m.rerun()
	m.updateLayout()
}

// shiftWindow moves w by delta samples, clamped so every shift in shifts stays
// inside n samples. It reports false when the window cannot move.
func shiftWindow(w signal.Window, delta, n int, shifts signal.ShiftRange) (signal.Window, bool) {
	lo := maxInt(shifts.Min, -shifts.Min)
	hi := n - shifts.Max
	next := signal.Window{Start: w.Start + delta, End: w.End + delta}
	if next.Start < lo {
		next = signal.Window{Start: lo, End: lo + w.Len()}
	}
	if next.End > hi {
		next = signal.Window{Start: hi - w.Len(), End: hi}
	}
	if next.Start < lo || next == w {
		return w, false
	}
	return next, true
}

func (m *Model) rerun() {
	result, err := m.analyzer.Run(context.Background(), m.log, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.result = result
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyStuckTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) refreshHistory() {
	if m.store == nil {
		m.report = stats.Report{CurveWindow: m.histCfg.CurveWindow}
		m.renderTabContents()
		return
	}
	report, err := stats.BuildReport(context.Background(), m.store, m.histCfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.report = report
	m.renderTabContents()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(m.renderSettingsSummary(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettingsSummary() string {
	joint := m.log.Joint
	if joint == "" {
		joint = "?"
	}
	summary := fmt.Sprintf("Log: %s  joint=%s  window=[%d,%d)  shifts=[%d,%d)  curve=%d",
		m.log.Path, joint,
		m.result.Window.Start, m.result.Window.End,
		m.result.Shifts.Min, m.result.Shifts.Max,
		m.histCfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down  Window: [/]  Settings: /  Quit: q"
	switch m.activeTab {
	case tabTraces:
		help = "Nav: left/right  Scroll: up/down  Window: [/]  Rate: r  Settings: /  Quit: q"
	case tabHistory:
		help = "Nav: left/right  Scroll: up/down  Curve: -/=  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabStuck {
		if totalStuck(m.result) == 0 {
			return fitLines("No stuck samples found.", m.width, height)
		}
		view := tableMutedStyle.Render(m.stuckTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.result.Samples == 0 {
		for i := range m.viewports {
			m.viewports[i].SetContent("No analysis available.")
		}
	} else {
		m.viewports[tabOverview].SetContent(renderOverview(m.log, m.result, width))
		m.viewports[tabTraces].SetContent(renderTraces(m.log, m.result, width, m.withRate))
	}
	m.viewports[tabHistory].SetContent(m.renderHistory(width))
}

func renderOverview(log model.Log, result model.Analysis, width int) string {
	cards := renderSummaryCards(result, width)
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, log, result, true); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(result model.Analysis, width int) string {
	cards := []string{
		metricCard("Samples", humanize.Comma(int64(result.Samples))),
		metricCard("Mean dt", fmt.Sprintf("%.3f ms", result.MeanDt*1000)),
	}
	for _, p := range result.Pairs {
		cards = append(cards, metricCard(p.Label(), fmt.Sprintf("%d (%.1f ms)", p.Shift, p.TimeOffset*1000)))
	}
	cards = append(cards, metricCard("Stuck", strconv.Itoa(totalStuck(result))))
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	perRow := 4
	rows := make([]string, 0, (len(cards)+perRow-1)/perRow)
	for start := 0; start < len(cards); start += perRow {
		end := minInt(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderTraces(log model.Log, result model.Analysis, width int, withRate bool) string {
	var buf bytes.Buffer
	if err := stats.RenderTraces(&buf, log, result, width, plotHeight, true, withRate); err != nil {
		return fmt.Sprintf("Failed to render traces: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderHistory(width int) string {
	if m.store == nil {
		return "History is disabled (no store)."
	}
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, m.report, width, true); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func totalStuck(result model.Analysis) int {
	total := 0
	for _, s := range result.Stuck {
		total += s.Count
	}
	return total
}

func stuckColumns() []table.Column {
	return []table.Column{
		{Title: "Signal", Width: 6},
		{Title: "Index", Width: 8},
		{Title: "Time (s)", Width: 10},
		{Title: "Value", Width: 12},
	}
}

func stuckRows(result model.Analysis) []table.Row {
	rows := make([]table.Row, 0, totalStuck(result))
	for _, s := range result.Stuck {
		for _, sample := range s.Samples {
			rows = append(rows, table.Row{
				s.Signal,
				strconv.Itoa(sample.Index),
				fmt.Sprintf("%.4f", sample.Time),
				fmt.Sprintf("%.6g", sample.Value),
			})
		}
	}
	return rows
}

func buildStuckTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(stuckColumns()),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(stuckTableStyles())
	return t
}

func (m *Model) applyStuckTable(width, height int) {
	rows := stuckRows(m.result)
	m.stuckTable.SetRows(rows)
	m.stuckLayout.rowCount = len(rows)
	m.stuckLayout.width = 0
	m.setStuckTableSize(width, height)
}

func (m *Model) setStuckTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.stuckLayout.width == width && m.stuckLayout.height == viewportHeight {
		return
	}
	m.stuckLayout.width = width
	m.stuckLayout.height = viewportHeight
	m.stuckTable.SetWidth(width)
	m.stuckTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustStuckTableHeight(height)
	if m.stuckLayout.height != viewportHeight {
		m.stuckLayout.height = viewportHeight
		m.stuckTable.SetHeight(viewportHeight)
	}
}

func stuckTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) adjustStuckTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.stuckTable.Height()
	viewHeight := lipgloss.Height(m.stuckTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.stuckTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.stuckTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.rerun()
		m.refreshHistory()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	values := make([]int, len(m.filterInputs))
	names := []string{"window start", "window end", "min shift", "max shift", "curve window"}
	for i, input := range m.filterInputs {
		raw := strings.TrimSpace(input.Value())
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s (use integer)", names[i])
		}
		values[i] = parsed
	}
	start, end, minShift, maxShift, curve := values[0], values[1], values[2], values[3], values[4]
	if start >= end {
		return fmt.Errorf("window start must be below window end")
	}
	if minShift >= maxShift {
		return fmt.Errorf("min shift must be below max shift")
	}
	if curve < 1 {
		return fmt.Errorf("invalid curve window (use integer >= 1)")
	}

	m.cfg.WindowStart = start
	m.cfg.WindowEnd = end
	m.cfg.MinShift = minShift
	m.cfg.MaxShift = maxShift
	m.histCfg.CurveWindow = curve
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
