// Package metrics exposes Prometheus collectors for the API, the realtime
// fan-out and caption generation.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memebazaar"

// Generation outcomes.
const (
	GenerationMemoHit   = "memo_hit"
	GenerationGenerated = "generated"
	GenerationFallback  = "fallback"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	eventsPublished *prometheus.CounterVec
	publishErrors   *prometheus.CounterVec
	generations     *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Realtime events handed to the publisher.",
		}, []string{"event"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Realtime events the publisher failed to send.",
		}, []string{"event"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Caption and vibe requests by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.eventsPublished,
		m.publishErrors,
		m.generations,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. route is the matched
// pattern (e.g. /api/memes/:id/vote), never the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveGeneration records a caption or vibe outcome.
func (m *Metrics) ObserveGeneration(result string) {
	m.generations.WithLabelValues(result).Inc()
}

// RegisterConnections exposes the live websocket count as a gauge.
func (m *Metrics) RegisterConnections(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Live realtime subscriptions.",
	}, func() float64 { return float64(count()) }))
}

// Publisher is the event publishing surface being instrumented.
type Publisher interface {
	Publish(ctx context.Context, topic, event string, payload interface{}) error
}

type countingPublisher struct {
	next    Publisher
	metrics *Metrics
}

// WrapPublisher counts events passing through next.
func (m *Metrics) WrapPublisher(next Publisher) Publisher {
	return &countingPublisher{next: next, metrics: m}
}

func (p *countingPublisher) Publish(ctx context.Context, topic, event string, payload interface{}) error {
	if err := p.next.Publish(ctx, topic, event, payload); err != nil {
		p.metrics.publishErrors.WithLabelValues(event).Inc()
		return err
	}
	p.metrics.eventsPublished.WithLabelValues(event).Inc()
	return nil
}
