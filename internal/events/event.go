// Package events publishes operation events to Kafka for downstream consumers
// (audit sinks, reconciliation, analytics). Emission is best-effort and never
// blocks or fails a payment operation.
package events

import (
	"context"
	"time"
)

// OperationEvent describes one completed (or rejected) payment operation.
type OperationEvent struct {
	RequestID         string    `json:"request_id"`
	Operation         string    `json:"operation"`
	ProviderType      string    `json:"provider_type"`
	PaymentType       string    `json:"payment_type,omitempty"`
	Status            string    `json:"status"`
	ErrorKind         string    `json:"error_kind,omitempty"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	SCARequired       bool      `json:"sca_required"`
	SCACompleted      bool      `json:"sca_completed"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Producer emits operation events. Callers use it best-effort: log and ignore
// errors.
type Producer interface {
	// Emit sends a single operation event. Implementations may block briefly;
	// call from a goroutine if needed.
	Emit(ctx context.Context, event *OperationEvent) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already
	// closed.
	Close() error
}
