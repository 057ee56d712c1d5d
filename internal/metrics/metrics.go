// Package metrics exports analysis results in the Prometheus textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verte-zerg/sinecheck/internal/model"
)

const namespace = "sinecheck"

// Exporter holds the gauges of the most recent analysis in its own registry.
type Exporter struct {
	registry *prometheus.Registry

	analyses    prometheus.Counter
	samples     prometheus.Gauge
	meanDt      prometheus.Gauge
	bestShift   *prometheus.GaugeVec
	bestOffset  *prometheus.GaugeVec
	bestScore   *prometheus.GaugeVec
	stuckCounts *prometheus.GaugeVec
}

// NewExporter creates an Exporter with all collectors registered.
func NewExporter() (*Exporter, error) {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Number of analyses observed by this exporter.",
		}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Number of samples in the analysed log.",
		}),
		meanDt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_dt_seconds",
			Help:      "Mean sample interval of the analysed log.",
		}),
		bestShift: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_shift_samples",
			Help:      "Shift in samples with the highest correlation, per signal pair.",
		}, []string{"pair"}),
		bestOffset: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_offset_seconds",
			Help:      "Best shift converted to seconds using the mean sample interval.",
		}, []string{"pair"}),
		bestScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_score",
			Help:      "Cosine similarity at the best shift, per signal pair.",
		}, []string{"pair"}),
		stuckCounts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stuck_samples",
			Help:      "Consecutive samples with an unchanged value, per signal.",
		}, []string{"signal"}),
	}

	collectors := []prometheus.Collector{
		e.analyses,
		e.samples,
		e.meanDt,
		e.bestShift,
		e.bestOffset,
		e.bestScore,
		e.stuckCounts,
	}
	for _, collector := range collectors {
		if err := e.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return e, nil
}

// Registry exposes the exporter's gatherer.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe replaces the gauges with the values of analysis.
func (e *Exporter) Observe(analysis model.Analysis) {
	e.analyses.Inc()
	e.samples.Set(float64(analysis.Samples))
	e.meanDt.Set(analysis.MeanDt)

	e.bestShift.Reset()
	e.bestOffset.Reset()
	e.bestScore.Reset()
	for _, p := range analysis.Pairs {
		label := p.Label()
		e.bestShift.WithLabelValues(label).Set(float64(p.Shift))
		e.bestOffset.WithLabelValues(label).Set(p.TimeOffset)
		e.bestScore.WithLabelValues(label).Set(p.Score)
	}

	e.stuckCounts.Reset()
	for _, s := range analysis.Stuck {
		e.stuckCounts.WithLabelValues(s.Signal).Set(float64(s.Count))
	}
}

// WriteTextfile writes the current metrics to path for the node exporter
// textfile collector. The file is replaced atomically.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
