// Package engine decides whether an operation requires Strong Customer
// Authentication. The orchestrator only enforces the resulting gate; all
// threshold and risk logic lives here, behind the Evaluator interface.
package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
)

// Input describes the operation being gated. Operation is always the
// committing operation: simulations pass their committing counterpart.
type Input struct {
	Operation    domain.OperationType
	ProviderType domain.ProviderType
	PaymentType  domain.PaymentType
	Amount       decimal.Decimal
	Currency     string
}

// Decision is the outcome of requirement-policy evaluation.
type Decision struct {
	Required bool
}

// Evaluator evaluates the SCA requirement policy for one request.
type Evaluator interface {
	EvaluateSCA(ctx context.Context, in Input) (Decision, error)
}
