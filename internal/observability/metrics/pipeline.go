package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/govreg/doccompass/internal/core/domain"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runsInFlight    prometheus.Gauge
	matchesTotal    *prometheus.CounterVec
	conflictsTotal  prometheus.Counter
	resultsPerRun   prometheus.Histogram
	coverageAverage prometheus.Gauge
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total reconciliation runs by outcome.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Reconciliation run duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "runs_in_flight",
			Help:      "Number of reconciliation runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	matchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "matches_total",
			Help:      "Reconciled entries by matching method.",
		},
		[]string{"service", "method"},
	)
	conflictsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "conflicts_total",
			Help:      "Title conflicts detected across all runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	resultsPerRun := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "results_per_run",
			Help:      "Required documents reconciled per run.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	coverageAverage := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "doccompass",
			Subsystem: "pipeline",
			Name:      "coverage_average_percent",
			Help:      "Mean coverage percent over the latest run.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(runsTotal, runDuration, runsInFlight, matchesTotal, conflictsTotal, resultsPerRun, coverageAverage)

	return &PipelineMetrics{
		registry:        registry,
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		runsInFlight:    runsInFlight,
		matchesTotal:    matchesTotal,
		conflictsTotal:  conflictsTotal,
		resultsPerRun:   resultsPerRun,
		coverageAverage: coverageAverage,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *PipelineMetrics) FinishRun(service string, duration time.Duration, err error) {
	m.runsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runsTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveResultSet records per-run facts from a completed reconciliation.
func (m *PipelineMetrics) ObserveResultSet(service string, rs *domain.ResultSet) {
	if rs == nil {
		return
	}
	coverageSum := 0
	for _, r := range rs.Results {
		m.matchesTotal.WithLabelValues(service, string(r.MatchMethod)).Inc()
		coverageSum += r.CoveragePercent
	}
	m.conflictsTotal.Add(float64(len(rs.Conflicts)))
	m.resultsPerRun.Observe(float64(len(rs.Results)))
	if len(rs.Results) > 0 {
		m.coverageAverage.Set(float64(coverageSum) / float64(len(rs.Results)))
	}
}
