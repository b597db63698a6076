package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/shopspring/decimal"
)

const scaQuery = "data.railgate.sca.sca_required"

// Default Rego policy: SCA for amounts at or above the threshold, always for
// cross-border rails, and always for future-dated (scheduled) operations.
const defaultRegoPolicy = `package railgate.sca

default sca_required = false

sca_required if {
	input.request.amount >= input.thresholds.amount
}

sca_required if {
	input.request.provider_type == "crossborder"
}

sca_required if {
	input.request.operation == "schedule"
}
`

// OPAEvaluator evaluates the SCA requirement policy using OPA Rego.
type OPAEvaluator struct {
	threshold decimal.Decimal
	// extra operator-supplied Rego modules, evaluated alongside the default.
	extraPolicies []string
}

// NewOPAEvaluator returns an OPA-based evaluator. threshold is the amount at
// or above which SCA is required. extraPolicies may hold operator Rego
// overrides; when empty only the default policy applies.
func NewOPAEvaluator(threshold decimal.Decimal, extraPolicies []string) *OPAEvaluator {
	return &OPAEvaluator{threshold: threshold, extraPolicies: extraPolicies}
}

// HealthCheck verifies that the in-process Rego engine can compile and
// evaluate the active policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := e.compile()
	if err != nil {
		return fmt.Errorf("compile policy: %w", err)
	}
	minimalInput := map[string]interface{}{
		"request": map[string]interface{}{
			"operation":     "execute",
			"provider_type": "domestic",
			"payment_type":  "instant",
			"amount":        0.0,
			"currency":      "EUR",
		},
		"thresholds": map[string]interface{}{
			"amount": e.threshold.InexactFloat64(),
		},
	}
	q := rego.New(
		rego.Query(scaQuery),
		rego.Compiler(compiler),
		rego.Input(minimalInput),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateSCA evaluates the SCA requirement for in. On evaluation failure the
// gate fails closed: SCA is required.
func (e *OPAEvaluator) EvaluateSCA(ctx context.Context, in Input) (Decision, error) {
	input := map[string]interface{}{
		"request": map[string]interface{}{
			"operation":     string(in.Operation),
			"provider_type": string(in.ProviderType),
			"payment_type":  string(in.PaymentType),
			"amount":        in.Amount.InexactFloat64(),
			"currency":      in.Currency,
		},
		"thresholds": map[string]interface{}{
			"amount": e.threshold.InexactFloat64(),
		},
	}

	compiler, err := e.compile()
	if err != nil {
		log.Printf("policy: compile failed: %v, requiring SCA", err)
		return Decision{Required: true}, nil
	}

	q := rego.New(
		rego.Query(scaQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		log.Printf("policy: evaluation failed: %v, requiring SCA", err)
		return Decision{Required: true}, nil
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		log.Printf("policy: query returned no result, requiring SCA")
		return Decision{Required: true}, nil
	}
	required, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		log.Printf("policy: non-boolean result %T, requiring SCA", rs[0].Expressions[0].Value)
		return Decision{Required: true}, nil
	}
	return Decision{Required: required}, nil
}

func (e *OPAEvaluator) compile() (*ast.Compiler, error) {
	modules := map[string]string{"policy_default.rego": defaultRegoPolicy}
	for i, p := range e.extraPolicies {
		if p == "" {
			continue
		}
		modules[fmt.Sprintf("policy_%d.rego", i)] = p
	}
	return ast.CompileModules(modules)
}
