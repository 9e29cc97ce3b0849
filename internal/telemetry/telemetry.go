// Package telemetry provides Prometheus metrics, OpenTelemetry tracing, and
// the asynchronous cleaning-session recorder.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "boilerplate-engine"

// Metrics holds all engine Prometheus metrics
type Metrics struct {
	// Apply-phase metrics
	SessionsProcessed  *prometheus.CounterVec
	CharsRemoved       prometheus.Counter
	PersistentRemovals prometheus.Counter
	HeaderRemovals     prometheus.Counter
	CleanDuration      prometheus.Histogram
	CleanTimeouts      prometheus.Counter

	// Mining metrics
	MiningRuns       *prometheus.CounterVec
	MiningDuration   prometheus.Histogram
	SegmentsFound    prometheus.Counter
	PatternsPromoted prometheus.Counter
	InsufficientRuns prometheus.Counter

	// Wire attribution metrics
	WireDetections *prometheus.CounterVec

	// Recorder backpressure metrics
	QueueDepth     prometheus.Gauge
	RecordsDropped prometheus.Counter
	WriteFailures  prometheus.Counter
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initApplyMetrics(m)
	initMiningMetrics(m)
	initWireMetrics(m)
	initRecorderMetrics(m)
	return m
}

func initApplyMetrics(m *Metrics) {
	m.SessionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boilerplate_sessions_total",
		Help: "Total cleaning sessions by outcome (cleaned, unchanged, timeout)",
	}, []string{"outcome"})

	m.CharsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_chars_removed_total",
		Help: "Total characters removed across all cleaning sessions",
	})

	m.PersistentRemovals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_persistent_removals_total",
		Help: "Total stored-pattern removals applied",
	})

	m.HeaderRemovals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_header_removals_total",
		Help: "Total social-share header prefixes stripped",
	})

	m.CleanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boilerplate_clean_duration_seconds",
		Help:    "Time to clean a single article",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	})

	m.CleanTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_clean_timeouts_total",
		Help: "Cleaning calls that hit the hard timeout and returned original text",
	})
}

func initMiningMetrics(m *Metrics) {
	m.MiningRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boilerplate_mining_runs_total",
		Help: "Total mining runs by result (completed, insufficient_sample, failed, cancelled)",
	}, []string{"result"})

	m.MiningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boilerplate_mining_duration_seconds",
		Help:    "Duration of a single-domain mining run",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	})

	m.SegmentsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_segments_found_total",
		Help: "Candidate segments that cleared the retention gates",
	})

	m.PatternsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_patterns_promoted_total",
		Help: "Segments promoted into the persistent pattern library",
	})

	m.InsufficientRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_mining_insufficient_sample_total",
		Help: "Mining runs that found fewer articles than min occurrences",
	})
}

func initWireMetrics(m *Metrics) {
	m.WireDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boilerplate_wire_detections_total",
		Help: "Wire service detections by provider and method",
	}, []string{"provider", "method"})
}

func initRecorderMetrics(m *Metrics) {
	m.QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boilerplate_recorder_queue_depth",
		Help: "Current pending records in the telemetry queue",
	})

	m.RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_recorder_dropped_total",
		Help: "Telemetry records dropped due to queue overflow",
	})

	m.WriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boilerplate_recorder_write_failures_total",
		Help: "Telemetry writes that failed and were dropped",
	})
}

// RecordClean records metrics for a single cleaning session
func (p *Provider) RecordClean(ctx context.Context, meta CleanOutcome, duration time.Duration) {
	p.Metrics.SessionsProcessed.WithLabelValues(meta.Outcome).Inc()
	p.Metrics.CharsRemoved.Add(float64(meta.CharsRemoved))
	p.Metrics.PersistentRemovals.Add(float64(meta.PersistentRemovals))
	if meta.HeaderRemoved {
		p.Metrics.HeaderRemovals.Inc()
	}
	p.Metrics.CleanDuration.Observe(duration.Seconds())
}

// CleanOutcome summarizes one cleaning call for metric recording
type CleanOutcome struct {
	Outcome            string // cleaned, unchanged, timeout
	CharsRemoved       int
	PersistentRemovals int
	HeaderRemoved      bool
}

// RecordCleanTimeout records a cleaning call that hit the hard timeout
func (p *Provider) RecordCleanTimeout(ctx context.Context) {
	p.Metrics.CleanTimeouts.Inc()
	p.Metrics.SessionsProcessed.WithLabelValues("timeout").Inc()
}

// RecordMiningRun records a completed mining run
func (p *Provider) RecordMiningRun(ctx context.Context, result string, segments, promoted int, duration time.Duration) {
	p.Metrics.MiningRuns.WithLabelValues(result).Inc()
	p.Metrics.MiningDuration.Observe(duration.Seconds())
	p.Metrics.SegmentsFound.Add(float64(segments))
	p.Metrics.PatternsPromoted.Add(float64(promoted))
	if result == "insufficient_sample" {
		p.Metrics.InsufficientRuns.Inc()
	}
}

// RecordWireDetection records a wire service detection
func (p *Provider) RecordWireDetection(ctx context.Context, provider, method string) {
	p.Metrics.WireDetections.WithLabelValues(provider, method).Inc()
}

// SetQueueDepth sets the current telemetry queue depth
func (p *Provider) SetQueueDepth(depth int) {
	p.Metrics.QueueDepth.Set(float64(depth))
}

// IncrementDropped increments the dropped-record counter
func (p *Provider) IncrementDropped() {
	p.Metrics.RecordsDropped.Inc()
}

// IncrementWriteFailures increments the write-failure counter
func (p *Provider) IncrementWriteFailures() {
	p.Metrics.WriteFailures.Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
