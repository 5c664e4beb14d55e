// Package metrics holds the Prometheus collectors for index builds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build kinds.
const (
	KindLocal  = "local"
	KindGlobal = "global"
	KindParse  = "parse"
)

var (
	// buildDuration measures index build latency.
	// Labels: kind (local, global, parse)
	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "breadcrumbs",
		Subsystem: "index",
		Name:      "build_duration_seconds",
		Help:      "Index build latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"kind"})

	// buildsTotal counts builds by outcome.
	// Labels: kind, status (ok, truncated, error)
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "breadcrumbs",
		Subsystem: "index",
		Name:      "builds_total",
		Help:      "Total index builds",
	}, []string{"kind", "status"})

	// pathsEnumerated counts paths produced by enumeration.
	pathsEnumerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "breadcrumbs",
		Subsystem: "index",
		Name:      "paths_total",
		Help:      "Total start-to-leaf paths enumerated",
	}, []string{"kind"})

	// hierarchyNodes reports the node count of the last loaded hierarchy.
	hierarchyNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "breadcrumbs",
		Subsystem: "index",
		Name:      "hierarchy_nodes",
		Help:      "Notes in the most recently loaded hierarchy",
	})
)

// ObserveBuild records one finished build.
func ObserveBuild(kind string, elapsed time.Duration, paths int, truncated bool, err error) {
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case truncated:
		status = "truncated"
	}
	buildDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	buildsTotal.WithLabelValues(kind, status).Inc()
	if paths > 0 {
		pathsEnumerated.WithLabelValues(kind).Add(float64(paths))
	}
}

// SetHierarchyNodes records the size of the loaded hierarchy.
func SetHierarchyNodes(n int) {
	hierarchyNodes.Set(float64(n))
}
