// Package crossborder implements the cross-border transfer rail: percentage
// fees with a minimum, multi-day settlement, and compliance screening of the
// creditor before any committing operation.
package crossborder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/rails"
)

const referencePrefix = "XB-"

// Provider is the cross-border rail provider.
type Provider struct {
	feeRate         decimal.Decimal
	priorityFeeRate decimal.Decimal
	minFee          decimal.Decimal
	minPriorityFee  decimal.Decimal
	nowF            func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock injects the time source used for settlement dates.
func WithClock(nowF func() time.Time) Option {
	return func(p *Provider) { p.nowF = nowF }
}

// New returns a cross-border rail provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		feeRate:         decimal.RequireFromString("0.004"),
		priorityFeeRate: decimal.RequireFromString("0.008"),
		minFee:          decimal.RequireFromString("5.00"),
		minPriorityFee:  decimal.RequireFromString("10.00"),
		nowF:            func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Type() domain.ProviderType {
	return domain.ProviderCrossBorder
}

func (p *Provider) PaymentTypes() []domain.PaymentType {
	return []domain.PaymentType{domain.PaymentInternational, domain.PaymentInternationalPriority}
}

// HealthCheck probes the rail connection. The in-process rail is always up.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return nil
}

func (p *Provider) feeFor(req *domain.Request) domain.Money {
	rate, minimum := p.feeRate, p.minFee
	if req.PaymentType == domain.PaymentInternationalPriority {
		rate, minimum = p.priorityFeeRate, p.minPriorityFee
	}
	fee := req.Money.Amount.Mul(rate).Round(2)
	if fee.LessThan(minimum) {
		fee = minimum
	}
	return domain.Money{Amount: fee, Currency: req.Money.Currency}
}

func (p *Provider) settlementFor(pt domain.PaymentType, from time.Time) time.Time {
	days := 2
	if pt == domain.PaymentInternationalPriority {
		days = 1
	}
	return rails.AddBusinessDays(from, days)
}

// Simulate screens the creditor and returns a non-binding fee and settlement
// estimate. Screening runs on simulation too, so an infeasible transfer is
// reported before the caller commits.
func (p *Provider) Simulate(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	if err := screen(req); err != nil {
		return nil, err
	}
	now := p.nowF()
	return &domain.Estimate{
		Fee:            p.feeFor(req),
		ExecutionDate:  now,
		SettlementDate: p.settlementFor(req.PaymentType, now),
	}, nil
}

// Execute screens the creditor and submits the transfer.
func (p *Provider) Execute(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	if err := screen(req); err != nil {
		return nil, err
	}
	return &domain.Receipt{
		Reference: referencePrefix + uuid.New().String(),
		Status:    domain.StatusExecuted,
	}, nil
}

// Cancel revokes an in-flight transfer if it has not settled yet.
func (p *Provider) Cancel(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	return &domain.Receipt{
		Reference: referencePrefix + "CXL-" + uuid.New().String(),
		Status:    domain.StatusCancelled,
	}, nil
}

// SimulateCancellation estimates cancellation. Cross-border cancellations are
// free but only possible before settlement, which the estimate reflects as a
// same-day execution window.
func (p *Provider) SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	now := p.nowF()
	return &domain.Estimate{
		Fee:            domain.Money{Amount: decimal.Zero, Currency: req.Money.Currency},
		ExecutionDate:  now,
		SettlementDate: now,
	}, nil
}

// Schedule registers a future-dated cross-border transfer after screening.
func (p *Provider) Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.Receipt, error) {
	if err := screen(req); err != nil {
		return nil, err
	}
	if !sched.ExecutionDate.After(p.nowF()) {
		return nil, &domain.ProviderFailure{
			Code:    "SCHEDULE_DATE_PAST",
			Message: "execution date must be in the future",
		}
	}
	if sched.RecurrencePattern != "" {
		return nil, &domain.ProviderFailure{
			Code:    "UNSUPPORTED_RECURRENCE",
			Message: "cross-border rail does not support recurring transfers",
		}
	}
	return &domain.Receipt{
		Reference: referencePrefix + "SCH-" + uuid.New().String(),
		Status:    domain.StatusScheduled,
	}, nil
}
