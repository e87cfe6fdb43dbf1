package dispatch

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/drblury/fieldflow/internal/runtime/dispatch")

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldflow_requests_total",
		Help: "Requests dispatched, by handler and response status.",
	}, []string{"handler", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldflow_request_duration_seconds",
		Help:    "End-to-end dispatch duration, extraction through finalization.",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})
)

func startSpan(ctx context.Context, handler string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "fieldflow.dispatch",
		trace.WithAttributes(attribute.String("fieldflow.handler", handler)))
}

func spanRecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func observeRequest(handler string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
}
