package ledger

import (
	"context"
	"time"

	"clickstream-backend/internal/domain/load"
	"clickstream-backend/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WithTracing wraps a ledger so each call runs in its own span.
func WithTracing(inner Ledger, tracer trace.Tracer) Ledger {
	return &tracedLedger{inner: inner, tracer: tracer}
}

type tracedLedger struct {
	inner  Ledger
	tracer trace.Tracer
}

func (l *tracedLedger) MarkStatus(ctx context.Context, sourceURI string, status load.JobStatus) error {
	ctx, span := l.tracer.Start(ctx, "ledger.MarkStatus",
		trace.WithAttributes(
			attribute.String("ledger.s3_uri", sourceURI),
			attribute.String("ledger.job_status", string(status)),
		),
	)
	defer span.End()

	err := l.inner.MarkStatus(ctx, sourceURI, status)
	observability.RecordError(span, err)
	return err
}

func (l *tracedLedger) Get(ctx context.Context, sourceURI string) (*load.JobRecord, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.Get",
		trace.WithAttributes(attribute.String("ledger.s3_uri", sourceURI)),
	)
	defer span.End()

	record, err := l.inner.Get(ctx, sourceURI)
	observability.RecordError(span, err)
	return record, err
}

// WithMetrics wraps a ledger so status writes are counted and timed.
func WithMetrics(inner Ledger, collector *observability.Collector) Ledger {
	return &instrumentedLedger{inner: inner, collector: collector}
}

type instrumentedLedger struct {
	inner     Ledger
	collector *observability.Collector
}

func (l *instrumentedLedger) MarkStatus(ctx context.Context, sourceURI string, status load.JobStatus) error {
	start := time.Now()
	err := l.inner.MarkStatus(ctx, sourceURI, status)

	l.collector.LedgerDuration.WithLabelValues(string(status)).Observe(time.Since(start).Seconds())
	l.collector.LedgerWrites.WithLabelValues(string(status), observability.Outcome(err)).Inc()
	return err
}

func (l *instrumentedLedger) Get(ctx context.Context, sourceURI string) (*load.JobRecord, error) {
	return l.inner.Get(ctx, sourceURI)
}
