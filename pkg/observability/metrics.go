package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "symbol"

// Metrics is a Prometheus implementation of StoreHooks and WalkHooks.
//
// Metrics register on the registerer given to NewMetrics, so tests and
// servers can keep separate registries without duplicate registration
// panics.
type Metrics struct {
	// InternsTotal counts intern calls. Labels: created (true, false)
	InternsTotal *prometheus.CounterVec

	// DeletesTotal counts node deletions.
	DeletesTotal prometheus.Counter

	// RebalancesTotal counts index rebuilds. Labels: strategy, status (success, error)
	RebalancesTotal *prometheus.CounterVec

	// RebalanceSeconds measures index rebuild duration. Labels: strategy
	RebalanceSeconds *prometheus.HistogramVec

	// IndexSize is the number of entries at the last rebuild.
	IndexSize prometheus.Gauge

	// WalksTotal counts traversals. Labels: mode, family
	WalksTotal *prometheus.CounterVec

	// WalkVisited measures nodes emitted per traversal. Labels: mode
	WalkVisited *prometheus.HistogramVec

	// RevisitsTotal counts nodes popped again after being visited.
	RevisitsTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InternsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "interns_total",
				Help:      "Total intern calls by whether a node was created",
			},
			[]string{"created"},
		),
		DeletesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "deletes_total",
				Help:      "Total node deletions",
			},
		),
		RebalancesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "index",
				Name:      "rebalances_total",
				Help:      "Total index rebuilds by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		RebalanceSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "index",
				Name:      "rebalance_seconds",
				Help:      "Index rebuild duration in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
			},
			[]string{"strategy"},
		),
		IndexSize: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "index",
				Name:      "entries",
				Help:      "Number of index entries at the last rebuild",
			},
		),
		WalksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "walk",
				Name:      "walks_total",
				Help:      "Total traversals by mode and family order",
			},
			[]string{"mode", "family"},
		),
		WalkVisited: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "walk",
				Name:      "visited_nodes",
				Help:      "Nodes emitted per traversal",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"mode"},
		),
		RevisitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "walk",
				Name:      "revisits_total",
				Help:      "Total nodes reached again after being visited",
			},
		),
	}
}

// Register installs m as the global store and walk hooks.
func (m *Metrics) Register() {
	SetStoreHooks(m)
	SetWalkHooks(m)
}

func (m *Metrics) OnIntern(_ string, created bool) {
	if created {
		m.InternsTotal.WithLabelValues("true").Inc()
	} else {
		m.InternsTotal.WithLabelValues("false").Inc()
	}
}

func (m *Metrics) OnDelete(string) {
	m.DeletesTotal.Inc()
}

func (m *Metrics) OnRebalance(strategy string, size int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RebalancesTotal.WithLabelValues(strategy, status).Inc()
	m.RebalanceSeconds.WithLabelValues(strategy).Observe(duration.Seconds())
	if err == nil {
		m.IndexSize.Set(float64(size))
	}
}

func (m *Metrics) OnWalk(mode, family string, visited, revisits int, _ time.Duration) {
	m.WalksTotal.WithLabelValues(mode, family).Inc()
	m.WalkVisited.WithLabelValues(mode).Observe(float64(visited))
	m.RevisitsTotal.Add(float64(revisits))
}
