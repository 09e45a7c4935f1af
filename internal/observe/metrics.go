// Package observe provides application-wide observability primitives for
// VerseCue: OpenTelemetry metrics, tracing, structured logging, and HTTP
// middleware for the metrics endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped from the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all VerseCue metrics.
const meterName = "github.com/versecue/versecue"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ScanDuration tracks end-to-end latency of one transcript scan through
	// the detection pipeline.
	ScanDuration metric.Float64Histogram

	// Detections counts validated references emitted by the pipeline. Use
	// with attributes:
	//   attribute.String("pattern", ...), attribute.String("book", ...)
	Detections metric.Int64Counter

	// Rejections counts candidates dropped during validation. Use with
	// attribute: attribute.String("reason", ...)
	Rejections metric.Int64Counter

	// Suppressions counts overlapping candidates discarded in favour of a
	// higher-priority match. Use with attribute:
	//   attribute.String("pattern", ...)
	Suppressions metric.Int64Counter

	// Duplicates counts detections swallowed by the debounce window.
	Duplicates metric.Int64Counter

	// CorrectionsTaught counts operator-taught book aliases.
	CorrectionsTaught metric.Int64Counter

	// TranscriptLines counts transcript fragments consumed from a source.
	// Use with attribute: attribute.String("source", ...)
	TranscriptLines metric.Int64Counter

	// HTTPRequestDuration tracks metrics-endpoint request time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// scanBuckets defines histogram bucket boundaries (in seconds) sized for
// regex scans over short transcript fragments.
var scanBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ScanDuration, err = m.Float64Histogram("versecue.scan.duration",
		metric.WithDescription("Latency of one transcript scan through the detection pipeline."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(scanBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Detections, err = m.Int64Counter("versecue.detections",
		metric.WithDescription("Validated scripture references emitted, by pattern and book."),
	); err != nil {
		return nil, err
	}
	if met.Rejections, err = m.Int64Counter("versecue.rejections",
		metric.WithDescription("Candidates dropped during validation, by reason."),
	); err != nil {
		return nil, err
	}
	if met.Suppressions, err = m.Int64Counter("versecue.overlap.suppressions",
		metric.WithDescription("Overlapping candidates discarded for a higher-priority match."),
	); err != nil {
		return nil, err
	}
	if met.Duplicates, err = m.Int64Counter("versecue.duplicates",
		metric.WithDescription("Detections swallowed by the debounce window."),
	); err != nil {
		return nil, err
	}
	if met.CorrectionsTaught, err = m.Int64Counter("versecue.corrections.taught",
		metric.WithDescription("Operator-taught book alias corrections."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptLines, err = m.Int64Counter("versecue.transcript.lines",
		metric.WithDescription("Transcript fragments consumed, by source kind."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("versecue.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordDetection records one emitted reference with the standard attribute
// set.
func (m *Metrics) RecordDetection(ctx context.Context, pattern, book string) {
	m.Detections.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("pattern", pattern),
			attribute.String("book", book),
		),
	)
}

// RecordRejection records one dropped candidate with its rejection reason.
func (m *Metrics) RecordRejection(ctx context.Context, reason string) {
	m.Rejections.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordSuppression records one overlap-suppressed candidate.
func (m *Metrics) RecordSuppression(ctx context.Context, pattern string) {
	m.Suppressions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("pattern", pattern)),
	)
}
