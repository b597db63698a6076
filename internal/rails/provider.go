// Package rails defines the capability contract every rail provider satisfies
// and the explicit bootstrap that builds the enabled providers at startup.
package rails

import (
	"context"

	"payment-rail-gateway/internal/payment/domain"
)

// Provider is the capability contract for one rail family. Implementations are
// opaque to the core: message formats, fee schedules, and settlement rules are
// theirs alone. Business failures are returned as *domain.ProviderFailure so
// the orchestrator can pass code and message through verbatim.
type Provider interface {
	// Type returns the rail family tag this provider serves.
	Type() domain.ProviderType
	// PaymentTypes returns the instruments this provider can handle.
	PaymentTypes() []domain.PaymentType
	// HealthCheck probes the rail connection. Used by health reporting only.
	HealthCheck(ctx context.Context) error

	Simulate(ctx context.Context, req *domain.Request) (*domain.Estimate, error)
	Execute(ctx context.Context, req *domain.Request) (*domain.Receipt, error)
	Cancel(ctx context.Context, req *domain.Request) (*domain.Receipt, error)
	SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.Estimate, error)
	Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.Receipt, error)
}

// Supports reports whether p handles the given payment type.
func Supports(p Provider, pt domain.PaymentType) bool {
	for _, t := range p.PaymentTypes() {
		if t == pt {
			return true
		}
	}
	return false
}
