// Package main provides the CLI entrypoint for sinecheck.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/sinecheck/internal/analysis"
	"github.com/verte-zerg/sinecheck/internal/config"
	"github.com/verte-zerg/sinecheck/internal/export"
	"github.com/verte-zerg/sinecheck/internal/generator"
	"github.com/verte-zerg/sinecheck/internal/logfile"
	"github.com/verte-zerg/sinecheck/internal/logging"
	"github.com/verte-zerg/sinecheck/internal/metrics"
	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
	"github.com/verte-zerg/sinecheck/internal/stats"
	"github.com/verte-zerg/sinecheck/internal/statsui"
	"github.com/verte-zerg/sinecheck/internal/store"
)

const (
	defaultHalfWindow  = analysis.DefaultHalfWindow
	defaultCurveWindow = 20
	defaultStuckLimit  = 10
	defaultPlotHeight  = 10
	defaultFormat      = "text"
	defaultLogLevel    = "info"
)

var defaultPairSpecs = []string{"cmd:ref", "cmd:pos"}

var (
	logLevel string
	logJSON  bool

	analyzeHalfWindow  int
	analyzeWindowStart int
	analyzeWindowEnd   int
	analyzeMinShift    int
	analyzeMaxShift    int
	analyzePairs       []string
	analyzeEpsilon     float64
	analyzeFormat      string
	analyzePlot        bool
	analyzeRate        bool
	analyzeHTML        string
	analyzePNG         string
	analyzeMetrics     string
	analyzeNoStore     bool
	analyzeColor       bool
	analyzeStuckLimit  int

	viewRun        int64
	viewHalfWindow int
	viewMinShift   int
	viewMaxShift   int
	viewEpsilon    float64

	historyJoint       string
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyDelete      int64
	historyColor       bool

	generateJoint   string
	generateOut     string
	generateDir     string
	generateRate    float64
	generateRefLag  int
	generatePosLag  int
	generateQuantum float64
	generateJitter  float64
	generateSeed    int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sinecheck",
		Short:         "Sine-test log lag and stuck-sample analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze LOG",
		Short: "Estimate signal lags and find stuck samples in a log",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().IntVar(&analyzeHalfWindow, "half-window", defaultHalfWindow, "samples on each side of the log midpoint")
	cmd.Flags().IntVar(&analyzeWindowStart, "window-start", 0, "explicit window start (with --window-end)")
	cmd.Flags().IntVar(&analyzeWindowEnd, "window-end", 0, "explicit window end, exclusive (0 uses the midpoint window)")
	cmd.Flags().IntVar(&analyzeMinShift, "min-shift", signal.DefaultShiftRange.Min, "smallest candidate shift")
	cmd.Flags().IntVar(&analyzeMaxShift, "max-shift", signal.DefaultShiftRange.Max, "largest candidate shift, exclusive")
	cmd.Flags().StringSliceVar(&analyzePairs, "pairs", defaultPairSpecs, "signal pairs as first:second")
	cmd.Flags().Float64Var(&analyzeEpsilon, "epsilon", signal.StuckEpsilon, "stuck-sample step threshold")
	cmd.Flags().StringVar(&analyzeFormat, "format", defaultFormat, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&analyzePlot, "plot", false, "plot traces in the terminal")
	cmd.Flags().BoolVar(&analyzeRate, "rate", false, "add a dx/dt panel to --plot")
	cmd.Flags().StringVar(&analyzeHTML, "html", "", "write an interactive HTML chart to FILE")
	cmd.Flags().StringVar(&analyzePNG, "png", "", "write a PNG figure to FILE")
	cmd.Flags().StringVar(&analyzeMetrics, "metrics", "", "write Prometheus textfile metrics to FILE")
	cmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "do not record the run in the history db")
	cmd.Flags().BoolVar(&analyzeColor, "color", false, "force colored output")
	cmd.Flags().IntVar(&analyzeStuckLimit, "stuck-limit", defaultStuckLimit, "stuck samples listed per signal")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLoggingConfig(cmd, fileCfg)
	applyIntConfig(cmd, "half-window", &analyzeHalfWindow, fileCfg.Analysis.HalfWindow)
	applyIntConfig(cmd, "min-shift", &analyzeMinShift, fileCfg.Analysis.MinShift)
	applyIntConfig(cmd, "max-shift", &analyzeMaxShift, fileCfg.Analysis.MaxShift)
	applyStringSliceConfig(cmd, "pairs", &analyzePairs, fileCfg.Analysis.Pairs)
	applyFloatConfig(cmd, "epsilon", &analyzeEpsilon, fileCfg.Analysis.Epsilon)
	applyStringConfig(cmd, "format", &analyzeFormat, fileCfg.Output.Format)
	applyBoolConfig(cmd, "plot", &analyzePlot, fileCfg.Output.Plot)
	applyBoolConfig(cmd, "color", &analyzeColor, fileCfg.Output.Color)
	if fileCfg.Output.Store != nil && !cmd.Flags().Changed("no-store") {
		analyzeNoStore = !*fileCfg.Output.Store
	}

	pairs, err := model.ParsePairs(analyzePairs)
	if err != nil {
		return err
	}
	cfg := model.AnalysisConfig{
		HalfWindow:  analyzeHalfWindow,
		WindowStart: analyzeWindowStart,
		WindowEnd:   analyzeWindowEnd,
		MinShift:    analyzeMinShift,
		MaxShift:    analyzeMaxShift,
		Pairs:       pairs,
		Epsilon:     analyzeEpsilon,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(analyzeFormat))
	if err := validateFormat(format); err != nil {
		return err
	}

	log, err := logfile.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load log: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(os.Stderr)
	result, err := analysis.New(logger).Run(ctx, log, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeReport(out, format, log, result); err != nil {
		return err
	}

	if analyzeHTML != "" {
		if err := writeFile(analyzeHTML, func(w io.Writer) error {
			return export.WriteHTML(w, log, result)
		}); err != nil {
			return fmt.Errorf("failed to write html: %w", err)
		}
		logger.Info("wrote html", "path", analyzeHTML)
	}
	if analyzePNG != "" {
		if err := writeFile(analyzePNG, func(w io.Writer) error {
			return export.WritePNG(w, log, result, export.DefaultPNGWidth, export.DefaultPNGHeight)
		}); err != nil {
			return fmt.Errorf("failed to write png: %w", err)
		}
		logger.Info("wrote png", "path", analyzePNG)
	}
	if analyzeMetrics != "" {
		exporter, err := metrics.NewExporter()
		if err != nil {
			return err
		}
		exporter.Observe(result)
		if err := exporter.WriteTextfile(analyzeMetrics); err != nil {
			return err
		}
		logger.Info("wrote metrics", "path", analyzeMetrics)
	}

	if analyzeNoStore {
		return nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(ctx, result, log)
	if err != nil {
		return err
	}
	logger.Debug("stored run", "id", id)
	return nil
}

func writeReport(w io.Writer, format string, log model.Log, result model.Analysis) error {
	switch format {
	case "json":
		return export.WriteJSON(w, result)
	case "yaml":
		return export.WriteYAML(w, result)
	}
	useColor := stats.ShouldUseColor(w, analyzeColor)
	if err := stats.RenderSummary(w, log, result, useColor); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderStuckSamples(w, result, analyzeStuckLimit); err != nil {
		return fmt.Errorf("failed to write stuck samples: %w", err)
	}
	if !analyzePlot {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderTraces(w, log, result, 0, defaultPlotHeight, useColor, analyzeRate)
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [LOG]",
		Short: "Explore a log or a stored run interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runViewCmd,
	}
	cmd.Flags().Int64Var(&viewRun, "run", 0, "open a stored run by id")
	cmd.Flags().IntVar(&viewHalfWindow, "half-window", defaultHalfWindow, "samples on each side of the log midpoint")
	cmd.Flags().IntVar(&viewMinShift, "min-shift", signal.DefaultShiftRange.Min, "smallest candidate shift")
	cmd.Flags().IntVar(&viewMaxShift, "max-shift", signal.DefaultShiftRange.Max, "largest candidate shift, exclusive")
	cmd.Flags().Float64Var(&viewEpsilon, "epsilon", signal.StuckEpsilon, "stuck-sample step threshold")
	return cmd
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (viewRun == 0) {
		return fmt.Errorf("provide either LOG or --run ID")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "half-window", &viewHalfWindow, fileCfg.Analysis.HalfWindow)
	applyIntConfig(cmd, "min-shift", &viewMinShift, fileCfg.Analysis.MinShift)
	applyIntConfig(cmd, "max-shift", &viewMaxShift, fileCfg.Analysis.MaxShift)
	applyFloatConfig(cmd, "epsilon", &viewEpsilon, fileCfg.Analysis.Epsilon)

	cfg := analysis.DefaultConfig()
	cfg.HalfWindow = viewHalfWindow
	cfg.MinShift = viewMinShift
	cfg.MaxShift = viewMaxShift
	cfg.Epsilon = viewEpsilon
	if fileCfg.Analysis.Pairs != nil {
		if cfg.Pairs, err = model.ParsePairs(*fileCfg.Analysis.Pairs); err != nil {
			return err
		}
	}

	ctx := context.Background()
	// A missing history db only disables the History tab.
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		if viewRun != 0 {
			return fmt.Errorf("failed to open db: %w", err)
		}
		logErrf("history unavailable: %v\n", err)
		st = nil
	}
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	var log model.Log
	if viewRun != 0 {
		run, err := st.GetRun(ctx, viewRun)
		if err != nil {
			return err
		}
		if log, err = st.LoadTraces(ctx, viewRun); err != nil {
			return err
		}
		cfg = run.AnalysisConfig()
	} else {
		if log, err = logfile.Load(args[0]); err != nil {
			return fmt.Errorf("failed to load log: %w", err)
		}
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	// The alternate screen owns the terminal; analyzer logs would corrupt it.
	analyzer := analysis.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	histCfg := model.HistoryConfig{Joint: log.Joint, CurveWindow: defaultCurveWindow}
	viewer := statsui.NewModel(analyzer, st, log, cfg, histCfg)
	program := tea.NewProgram(viewer, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored analyses",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyJoint, "joint", "", "joint filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().Int64Var(&historyDelete, "delete", 0, "delete the run with this id")
	cmd.Flags().BoolVar(&historyColor, "color", false, "force colored output")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "color", &historyColor, fileCfg.Output.Color)

	sinceTime, err := parseSince(historySince)
	if err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if historyDelete != 0 {
		if err := st.DeleteRun(ctx, historyDelete); err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return fmt.Errorf("run %d not found", historyDelete)
			}
			return err
		}
		if _, err := fmt.Fprintf(out, "Deleted run %d\n", historyDelete); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(ctx, st, model.HistoryConfig{
		Joint:       historyJoint,
		Since:       sinceTime,
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
	})
	if err != nil {
		return err
	}
	return stats.RenderHistory(out, report, 0, stats.ShouldUseColor(out, historyColor))
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newGenerateCmd() *cobra.Command {
	profile := generator.DefaultProfile()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic sine-test log",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	cmd.Flags().StringVar(&generateJoint, "joint", profile.Joint, "joint name")
	cmd.Flags().StringVar(&generateOut, "out", "", "output file (default: next sine_test_<joint>_NNNN.txt in --dir)")
	cmd.Flags().StringVar(&generateDir, "dir", ".", "output directory")
	cmd.Flags().Float64Var(&generateRate, "rate", profile.Rate, "samples per second")
	cmd.Flags().IntVar(&generateRefLag, "ref-lag", profile.RefLag, "samples between cmd and ref")
	cmd.Flags().IntVar(&generatePosLag, "pos-lag", profile.PosLag, "samples between ref and pos")
	cmd.Flags().Float64Var(&generateQuantum, "quantum", profile.Quantum, "pos resolution in radians (0 disables)")
	cmd.Flags().Float64Var(&generateJitter, "jitter", profile.Jitter, "timing jitter as a fraction of the interval")
	cmd.Flags().Int64Var(&generateSeed, "seed", 0, "random seed (0 uses the clock)")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	profile := generator.DefaultProfile()
	profile.Joint = strings.TrimSpace(generateJoint)
	profile.Rate = generateRate
	profile.RefLag = generateRefLag
	profile.PosLag = generatePosLag
	profile.Quantum = generateQuantum
	profile.Jitter = generateJitter
	if profile.Joint == "" || strings.ContainsAny(profile.Joint, " \t/") {
		return fmt.Errorf("--joint must be a non-empty name without spaces or slashes")
	}

	gen := generator.New()
	if generateSeed != 0 {
		gen = generator.NewSeeded(generateSeed)
	}
	log, err := gen.Generate(profile)
	if err != nil {
		return err
	}

	path := generateOut
	if path == "" {
		if err := os.MkdirAll(generateDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if path, err = logfile.NextLogPath(generateDir, profile.Joint); err != nil {
			return err
		}
	}
	if err := writeFile(path, func(w io.Writer) error {
		return logfile.Write(w, log)
	}); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	return logging.NewLogger(w, logLevel, logJSON)
}

func applyLoggingConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Logging.Level)
	applyBoolConfig(cmd, "log-json", &logJSON, fileCfg.Logging.JSON)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	quoted := make([]string, len(defaultPairSpecs))
	for i, spec := range defaultPairSpecs {
		quoted[i] = strconv.Quote(spec)
	}
	return fmt.Sprintf(`# sinecheck configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# half-window = %d        # Samples on each side of the log midpoint
# min-shift = %d            # Smallest candidate shift
# max-shift = %d           # Largest candidate shift (exclusive)
# pairs = [%s]
# epsilon = %g          # Steps with |dx| below this count as stuck

[output]
# format = %q          # text, json or yaml
# store = true              # Record runs in the history db
# plot = false              # Plot traces in the terminal
# color = false             # Force colored output

[logging]
# level = %q           # debug, info, warn or error
# json = false
`,
		defaultHalfWindow,
		signal.DefaultShiftRange.Min,
		signal.DefaultShiftRange.Max,
		strings.Join(quoted, ", "),
		signal.StuckEpsilon,
		defaultFormat,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.AnalysisConfig) error {
	if cfg.WindowEnd == 0 && cfg.HalfWindow <= 0 {
		return fmt.Errorf("--half-window must be > 0")
	}
	if cfg.WindowEnd > 0 && cfg.WindowStart >= cfg.WindowEnd {
		return fmt.Errorf("--window-start must be < --window-end")
	}
	if cfg.WindowStart < 0 || cfg.WindowEnd < 0 {
		return fmt.Errorf("window bounds must be >= 0")
	}
	if cfg.MinShift >= cfg.MaxShift {
		return fmt.Errorf("--min-shift must be < --max-shift")
	}
	if len(cfg.Pairs) == 0 {
		return fmt.Errorf("--pairs must not be empty")
	}
	if cfg.Epsilon <= 0 {
		return fmt.Errorf("--epsilon must be > 0")
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown --format %q (use text, json or yaml)", format)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
