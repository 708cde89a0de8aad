// Package metrics holds the per-run Prometheus collectors of a generation run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "synthgen"

// Page outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Pipeline stages timed per page.
const (
	StageLayout = "layout"
	StageRender = "render"
	StageWrite  = "write"
)

// Metrics is safe for concurrent use by all workers of a run.
type Metrics struct {
	Registry *prometheus.Registry

	// PagesTotal counts pages by split and status (ok, failed)
	PagesTotal *prometheus.CounterVec
	// FragmentsTotal counts labeled fragments by split
	FragmentsTotal *prometheus.CounterVec
	// OverflowsTotal counts fragments still wider than the usable region after clamping
	OverflowsTotal prometheus.Counter
	// ClippedTotal counts fragments that end below the page bottom
	ClippedTotal prometheus.Counter
	// WriteRetriesTotal counts retried image/label writes
	WriteRetriesTotal prometheus.Counter
	// FontFallbacksTotal counts fonts replaced by the built-in face
	FontFallbacksTotal prometheus.Counter
	// StageSeconds times layout, render and write per page
	StageSeconds *prometheus.HistogramVec
	// ActiveWorkers is the number of workers currently processing a page
	ActiveWorkers prometheus.Gauge
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		PagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_total",
				Help:      "Total number of pages processed by split and status",
			},
			[]string{"split", "status"},
		),
		FragmentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fragments_total",
				Help:      "Total number of labeled text fragments by split",
			},
			[]string{"split"},
		),
		OverflowsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_overflows_total",
			Help:      "Fragments that end past the usable region after clamping",
		}),
		ClippedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_clipped_total",
			Help:      "Fragments whose box ends below the page bottom",
		}),
		WriteRetriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_retries_total",
			Help:      "Retried image or label writes",
		}),
		FontFallbacksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "font_fallbacks_total",
			Help:      "Fonts that failed to load and were replaced by the built-in face",
		}),
		StageSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_seconds",
				Help:      "Per-page processing time in seconds by stage",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"stage"},
		),
		ActiveWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Workers currently processing a page",
		}),
	}
}

// PageDone records one finished page.
func (m *Metrics) PageDone(split, status string, fragments, overflows, clipped int) {
	m.PagesTotal.WithLabelValues(split, status).Inc()
	if fragments > 0 {
		m.FragmentsTotal.WithLabelValues(split).Add(float64(fragments))
	}
	if overflows > 0 {
		m.OverflowsTotal.Add(float64(overflows))
	}
	if clipped > 0 {
		m.ClippedTotal.Add(float64(clipped))
	}
}

// ObserveStage records the time spent since start in a stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
