package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "hookfang.requests.total"
	metricRequestDuration  = "hookfang.request.duration.seconds"
	metricErrorsTotal      = "hookfang.errors.total"
	metricInflightRequests = "hookfang.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s: single-file checks finish in
// milliseconds, whole-repository runs in seconds.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics.
// One op label per hook execution or served request.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	builder := newMetricBuilder(mt)

	rm := &REDMetrics{
		requestsTotal: builder.counter(metricRequestsTotal,
			"Total number of hook and tool requests", "{request}"),
		requestDuration: builder.histogram(metricRequestDuration,
			"Request duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal: builder.counter(metricErrorsTotal,
			"Total number of errors", "{error}"),
		inflightRequests: builder.upDownCounter(metricInflightRequests,
			"Number of in-flight requests", "{request}"),
	}

	if builder.err != nil {
		return nil, builder.err
	}

	return rm, nil
}

// RecordRequest records a completed request with its operation, status, and
// duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to
// decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}
