package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
)

func threshold(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := NewOPAEvaluator(threshold(t, "100.00"), nil)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	e := NewOPAEvaluator(threshold(t, "100.00"), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   Input
		want bool
	}{
		{
			name: "domestic below threshold",
			in: Input{
				Operation:    domain.OperationExecute,
				ProviderType: domain.ProviderDomestic,
				PaymentType:  domain.PaymentInstant,
				Amount:       decimal.RequireFromString("99.99"),
				Currency:     "EUR",
			},
			want: false,
		},
		{
			name: "domestic at threshold",
			in: Input{
				Operation:    domain.OperationExecute,
				ProviderType: domain.ProviderDomestic,
				PaymentType:  domain.PaymentInstant,
				Amount:       decimal.RequireFromString("100.00"),
				Currency:     "EUR",
			},
			want: true,
		},
		{
			name: "crossborder always",
			in: Input{
				Operation:    domain.OperationExecute,
				ProviderType: domain.ProviderCrossBorder,
				PaymentType:  domain.PaymentInternational,
				Amount:       decimal.RequireFromString("1.00"),
				Currency:     "EUR",
			},
			want: true,
		},
		{
			name: "schedule always",
			in: Input{
				Operation:    domain.OperationSchedule,
				ProviderType: domain.ProviderDomestic,
				PaymentType:  domain.PaymentStandard,
				Amount:       decimal.RequireFromString("1.00"),
				Currency:     "EUR",
			},
			want: true,
		},
		{
			name: "cancel below threshold",
			in: Input{
				Operation:    domain.OperationCancel,
				ProviderType: domain.ProviderDomestic,
				PaymentType:  domain.PaymentInstant,
				Amount:       decimal.RequireFromString("10.00"),
				Currency:     "EUR",
			},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := e.EvaluateSCA(ctx, tc.in)
			if err != nil {
				t.Fatalf("EvaluateSCA: %v", err)
			}
			if dec.Required != tc.want {
				t.Errorf("Required = %v, want %v", dec.Required, tc.want)
			}
		})
	}
}

func TestOPAEvaluator_OperatorPolicy(t *testing.T) {
	// Operator module adds a rule; the default rules still apply.
	extra := `package railgate.sca

sca_required if {
	input.request.payment_type == "instant"
}
`
	e := NewOPAEvaluator(threshold(t, "100.00"), []string{extra})
	dec, err := e.EvaluateSCA(context.Background(), Input{
		Operation:    domain.OperationExecute,
		ProviderType: domain.ProviderDomestic,
		PaymentType:  domain.PaymentInstant,
		Amount:       decimal.RequireFromString("1.00"),
		Currency:     "EUR",
	})
	if err != nil {
		t.Fatalf("EvaluateSCA: %v", err)
	}
	if !dec.Required {
		t.Error("operator rule should require SCA for instant payments")
	}
}

func TestOPAEvaluator_BrokenPolicyFailsClosed(t *testing.T) {
	e := NewOPAEvaluator(threshold(t, "100.00"), []string{"this is not rego"})
	dec, err := e.EvaluateSCA(context.Background(), Input{
		Operation:    domain.OperationExecute,
		ProviderType: domain.ProviderDomestic,
		PaymentType:  domain.PaymentInstant,
		Amount:       decimal.RequireFromString("1.00"),
		Currency:     "EUR",
	})
	if err != nil {
		t.Fatalf("EvaluateSCA: %v", err)
	}
	if !dec.Required {
		t.Error("a broken policy must fail closed and require SCA")
	}
}
