// Package domain holds the rail-agnostic payment types shared by the registry,
// the orchestrator, and the rail providers.
package domain

import "github.com/shopspring/decimal"

// ProviderType identifies a rail family. One live provider instance per type.
type ProviderType string

const (
	ProviderDomestic    ProviderType = "domestic"
	ProviderCrossBorder ProviderType = "crossborder"
)

// Valid reports whether pt is a known provider type.
func (pt ProviderType) Valid() bool {
	switch pt {
	case ProviderDomestic, ProviderCrossBorder:
		return true
	default:
		return false
	}
}

// PaymentType identifies a specific instrument within a rail family.
// Many payment types map to one provider type; see DefaultRoutes.
type PaymentType string

const (
	PaymentInstant               PaymentType = "instant"
	PaymentStandard              PaymentType = "standard"
	PaymentInternational         PaymentType = "international"
	PaymentInternationalPriority PaymentType = "international_priority"
)

// DefaultRoutes is the static PaymentType → ProviderType mapping, built once at
// initialization. Lookups after that are read-only.
func DefaultRoutes() map[PaymentType]ProviderType {
	return map[PaymentType]ProviderType{
		PaymentInstant:               ProviderDomestic,
		PaymentStandard:              ProviderDomestic,
		PaymentInternational:         ProviderCrossBorder,
		PaymentInternationalPriority: ProviderCrossBorder,
	}
}

// OperationType identifies one of the five payment operations.
type OperationType string

const (
	OperationSimulate             OperationType = "simulate"
	OperationExecute              OperationType = "execute"
	OperationCancel               OperationType = "cancel"
	OperationSimulateCancellation OperationType = "simulate_cancellation"
	OperationSchedule             OperationType = "schedule"
)

// Committing reports whether the operation changes state when it succeeds.
// Simulations never commit.
func (op OperationType) Committing() bool {
	switch op {
	case OperationExecute, OperationCancel, OperationSchedule:
		return true
	default:
		return false
	}
}

// CommittingCounterpart returns the committing operation a simulation stands in
// for, used when deciding whether the eventual commit would need SCA.
func (op OperationType) CommittingCounterpart() OperationType {
	switch op {
	case OperationSimulate:
		return OperationExecute
	case OperationSimulateCancellation:
		return OperationCancel
	default:
		return op
	}
}

// Money is an amount in a named currency. Amounts use decimal arithmetic;
// float64 money is never stored or compared.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney returns a Money from a decimal string (e.g. "150.00") and currency.
func NewMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: d, Currency: currency}, nil
}

// IsZero reports whether the amount is zero (currency ignored).
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
