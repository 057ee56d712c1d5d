// Package analysis runs lag estimation and stuck detection over a loaded log.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/sinecheck/internal/model"
	"github.com/verte-zerg/sinecheck/internal/signal"
)

// DefaultHalfWindow is the half width of the centred correlation window.
const DefaultHalfWindow = 200

// Analyzer estimates signal lags and stuck samples for sine-test logs.
type Analyzer struct {
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Analyzer logging to logger (slog.Default when nil).
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, now: time.Now}
}

// DefaultConfig returns the analysis settings used when nothing is configured.
func DefaultConfig() model.AnalysisConfig {
	pairs := make([]model.Pair, len(model.DefaultPairs))
	copy(pairs, model.DefaultPairs)
	return model.AnalysisConfig{
		HalfWindow: DefaultHalfWindow,
		MinShift:   signal.DefaultShiftRange.Min,
		MaxShift:   signal.DefaultShiftRange.Max,
		Pairs:      pairs,
		Epsilon:    signal.StuckEpsilon,
	}
}

// ResolveWindow returns the explicit window when cfg.WindowEnd is set, otherwise
// a window of cfg.HalfWindow samples either side of the middle sample.
func ResolveWindow(n int, cfg model.AnalysisConfig) signal.Window {
	if cfg.WindowEnd > 0 {
		return signal.Window{Start: cfg.WindowStart, End: cfg.WindowEnd}
	}
	half := cfg.HalfWindow
	if half <= 0 {
		half = DefaultHalfWindow
	}
	mid := n / 2
	return signal.Window{Start: mid - half, End: mid + half}
}

// Run analyses log with cfg. Pair estimates and stuck scans run concurrently.
func (a *Analyzer) Run(ctx context.Context, log model.Log, cfg model.AnalysisConfig) (model.Analysis, error) {
	cfg = withDefaults(cfg)
	n := log.Len()
	a.logger.Info("read samples", "path", log.Path, "samples", n)

	meanDt := signal.MeanInterval(log.Time)
	a.logger.Info("mean dt", "seconds", meanDt)

	window := ResolveWindow(n, cfg)
	shifts := signal.ShiftRange{Min: cfg.MinShift, Max: cfg.MaxShift}

	pairs := make([]model.PairResult, len(cfg.Pairs))
	stuck := make([]model.StuckSummary, len(model.SignalNames))

	g, gctx := errgroup.WithContext(ctx)
	for i, pair := range cfg.Pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			first, ok := log.Signal(pair.First)
			if !ok {
				return fmt.Errorf("%w %q", model.ErrInvalidPair, pair.String())
			}
			second, ok := log.Signal(pair.Second)
			if !ok {
				return fmt.Errorf("%w %q", model.ErrInvalidPair, pair.String())
			}
			res, err := signal.EstimateCorrelation(first, second, window, shifts, meanDt)
			if err != nil {
				return fmt.Errorf("failed to correlate %s: %w", pair.String(), err)
			}
			pairs[i] = model.PairResult{
				First:      pair.First,
				Second:     pair.Second,
				Shift:      res.Shift,
				Score:      res.Score,
				TimeOffset: res.TimeOffset,
			}
			return nil
		})
	}
	for i, name := range model.SignalNames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values, _ := log.Signal(name)
			report, err := signal.DetectStuckThreshold(name, log.Time, values, cfg.Epsilon)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", name, err)
			}
			stuck[i] = model.StuckSummary{Signal: name, Count: report.Count(), Samples: report.Samples}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Analysis{}, err
	}

	for _, p := range pairs {
		a.logger.Info("max correlation",
			"pair", p.Label(),
			"shift", p.Shift,
			"score", p.Score,
			"offset_ms", p.TimeOffset*1000,
		)
	}
	for _, s := range stuck {
		a.logger.Info("small steps", "signal", s.Signal, "count", s.Count)
	}

	return model.Analysis{
		LogPath:    log.Path,
		Joint:      log.Joint,
		Samples:    n,
		MeanDt:     meanDt,
		Window:     window,
		Shifts:     shifts,
		Epsilon:    cfg.Epsilon,
		Pairs:      pairs,
		Stuck:      stuck,
		AnalyzedAt: a.now().UTC(),
	}, nil
}

func withDefaults(cfg model.AnalysisConfig) model.AnalysisConfig {
	if cfg.MinShift == 0 && cfg.MaxShift == 0 {
		cfg.MinShift = signal.DefaultShiftRange.Min
		cfg.MaxShift = signal.DefaultShiftRange.Max
	}
	if len(cfg.Pairs) == 0 {
		cfg.Pairs = model.DefaultPairs
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = signal.StuckEpsilon
	}
	return cfg
}
