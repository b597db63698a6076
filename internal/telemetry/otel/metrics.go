package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// OperationMetrics records per-operation counters for the orchestrator.
type OperationMetrics struct {
	operations otelmetric.Int64Counter
	rejections otelmetric.Int64Counter
}

// NewOperationMetrics creates the orchestrator counters on the given meter
// provider. A nil provider yields no-op instruments.
func NewOperationMetrics(provider otelmetric.MeterProvider) (*OperationMetrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	meter := provider.Meter("railgate.orchestrator")
	ops, err := meter.Int64Counter("railgate.operations.total",
		otelmetric.WithDescription("Payment operations processed, by operation, provider, and status."))
	if err != nil {
		return nil, err
	}
	rej, err := meter.Int64Counter("railgate.rejections.total",
		otelmetric.WithDescription("Rejected payment operations, by error kind."))
	if err != nil {
		return nil, err
	}
	return &OperationMetrics{operations: ops, rejections: rej}, nil
}

// RecordOperation counts one finished operation attempt.
func (m *OperationMetrics) RecordOperation(ctx context.Context, operation, providerType, status string) {
	if m == nil {
		return
	}
	m.operations.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("provider_type", providerType),
		attribute.String("status", status),
	))
}

// RecordRejection counts one rejection by error kind.
func (m *OperationMetrics) RecordRejection(ctx context.Context, operation, errorKind string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("error_kind", errorKind),
	))
}
