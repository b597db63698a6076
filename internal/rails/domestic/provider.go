// Package domestic implements the domestic transfer rail: instant and
// standard transfers in the home currency, flat fees, same-day or
// next-business-day settlement.
package domestic

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/rails"
)

const referencePrefix = "DOM-"

// Provider is the domestic rail provider.
type Provider struct {
	homeCurrency string
	instantFee   decimal.Decimal
	standardFee  decimal.Decimal
	cancelFee    decimal.Decimal
	nowF         func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock injects the time source used for settlement dates.
func WithClock(nowF func() time.Time) Option {
	return func(p *Provider) { p.nowF = nowF }
}

// New returns a domestic rail provider settling in homeCurrency.
func New(homeCurrency string, opts ...Option) *Provider {
	p := &Provider{
		homeCurrency: strings.ToUpper(homeCurrency),
		instantFee:   decimal.RequireFromString("0.50"),
		standardFee:  decimal.RequireFromString("0.20"),
		cancelFee:    decimal.RequireFromString("0.10"),
		nowF:         func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Type() domain.ProviderType {
	return domain.ProviderDomestic
}

func (p *Provider) PaymentTypes() []domain.PaymentType {
	return []domain.PaymentType{domain.PaymentInstant, domain.PaymentStandard}
}

// HealthCheck probes the rail connection. The in-process rail is always up.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return nil
}

func (p *Provider) checkCurrency(req *domain.Request) error {
	if strings.ToUpper(req.Money.Currency) != p.homeCurrency {
		return &domain.ProviderFailure{
			Code:    "UNSUPPORTED_CURRENCY",
			Message: "domestic rail settles only in " + p.homeCurrency,
		}
	}
	return nil
}

func (p *Provider) feeFor(pt domain.PaymentType) decimal.Decimal {
	if pt == domain.PaymentInstant {
		return p.instantFee
	}
	return p.standardFee
}

func (p *Provider) settlementFor(pt domain.PaymentType, from time.Time) time.Time {
	if pt == domain.PaymentInstant {
		return from
	}
	return rails.AddBusinessDays(from, 1)
}

// Simulate returns a non-binding fee and settlement estimate.
func (p *Provider) Simulate(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	if err := p.checkCurrency(req); err != nil {
		return nil, err
	}
	now := p.nowF()
	return &domain.Estimate{
		Fee:            domain.Money{Amount: p.feeFor(req.PaymentType), Currency: p.homeCurrency},
		ExecutionDate:  now,
		SettlementDate: p.settlementFor(req.PaymentType, now),
	}, nil
}

// Execute submits the transfer to the rail and returns its reference.
func (p *Provider) Execute(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	if err := p.checkCurrency(req); err != nil {
		return nil, err
	}
	return &domain.Receipt{
		Reference: referencePrefix + uuid.New().String(),
		Status:    domain.StatusExecuted,
	}, nil
}

// Cancel revokes a previously executed or scheduled transfer.
func (p *Provider) Cancel(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	return &domain.Receipt{
		Reference: referencePrefix + "CXL-" + uuid.New().String(),
		Status:    domain.StatusCancelled,
	}, nil
}

// SimulateCancellation estimates the cancellation fee.
func (p *Provider) SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	now := p.nowF()
	return &domain.Estimate{
		Fee:            domain.Money{Amount: p.cancelFee, Currency: p.homeCurrency},
		ExecutionDate:  now,
		SettlementDate: now,
	}, nil
}

// Schedule registers a future-dated transfer. The execution date must be in
// the future and any recurrence pattern must be one the rail supports.
func (p *Provider) Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.Receipt, error) {
	if err := p.checkCurrency(req); err != nil {
		return nil, err
	}
	if !sched.ExecutionDate.After(p.nowF()) {
		return nil, &domain.ProviderFailure{
			Code:    "SCHEDULE_DATE_PAST",
			Message: "execution date must be in the future",
		}
	}
	if err := validRecurrence(sched.RecurrencePattern); err != nil {
		return nil, err
	}
	return &domain.Receipt{
		Reference: referencePrefix + "SCH-" + uuid.New().String(),
		Status:    domain.StatusScheduled,
	}, nil
}

func validRecurrence(pattern string) error {
	switch pattern {
	case "", "daily", "weekly", "monthly":
		return nil
	default:
		return &domain.ProviderFailure{
			Code:    "UNSUPPORTED_RECURRENCE",
			Message: "recurrence pattern must be daily, weekly, or monthly",
		}
	}
}
