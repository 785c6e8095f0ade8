package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Expansion outcomes recorded on expansions_total
const (
	OutcomeExpanded        = "expanded"
	OutcomeInvalidTrigger  = "invalid_trigger"
	OutcomeAlreadyExpanded = "already_expanded"
	OutcomeBusy            = "busy"
	OutcomeFailed          = "failed"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Expansion metrics
	Expansions    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Running graph size
	GraphNodes         prometheus.Gauge
	GraphRelationships prometheus.Gauge

	// Layout metrics
	PlacementFallbacks prometheus.Counter

	// Rendering surface
	RenderClients prometheus.Gauge
}

// NewCollector creates a collector with its own registry, so independent
// instances never collide on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	expansions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Total number of expansion requests by outcome",
		},
		[]string{"outcome"},
	)

	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Graph fragment fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source", "result"},
	)

	graphNodes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Number of nodes in the running graph",
		},
	)

	graphRelationships := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_relationships",
			Help:      "Number of relationships in the running graph",
		},
	)

	placementFallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placement_fallbacks_total",
			Help:      "Positions accepted after exhausting placement retries",
		},
	)

	renderClients := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "render_clients",
			Help:      "Number of connected rendering clients",
		},
	)

	registry.MustRegister(
		expansions,
		fetchDuration,
		graphNodes,
		graphRelationships,
		placementFallbacks,
		renderClients,
	)

	return &Collector{
		registry:           registry,
		Expansions:         expansions,
		FetchDuration:      fetchDuration,
		GraphNodes:         graphNodes,
		GraphRelationships: graphRelationships,
		PlacementFallbacks: placementFallbacks,
		RenderClients:      renderClients,
	}
}

// RecordExpansion counts one expansion request.
func (c *Collector) RecordExpansion(outcome string) {
	c.Expansions.WithLabelValues(outcome).Inc()
}

// RecordFetch observes one fetch. result is "ok" or the error category.
func (c *Collector) RecordFetch(source, result string, duration time.Duration) {
	c.FetchDuration.WithLabelValues(source, result).Observe(duration.Seconds())
}

// SetGraphSize reports the running graph's size.
func (c *Collector) SetGraphSize(nodes, relationships int) {
	c.GraphNodes.Set(float64(nodes))
	c.GraphRelationships.Set(float64(relationships))
}

// RecordPlacementFallback counts a position accepted without meeting the
// separation threshold.
func (c *Collector) RecordPlacementFallback() {
	c.PlacementFallbacks.Inc()
}

// SetRenderClients reports the number of connected websocket clients.
func (c *Collector) SetRenderClients(n int) {
	c.RenderClients.Set(float64(n))
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves this collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
