package crossborder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
)

var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestProvider() *Provider {
	return New(WithClock(func() time.Time { return monday }))
}

func request(pt domain.PaymentType, amount string) *domain.Request {
	return &domain.Request{
		RequestID:       "req-1",
		PaymentType:     pt,
		Money:           domain.Money{Amount: decimal.RequireFromString(amount), Currency: "USD"},
		DebtorAccount:   "ES9121000418450200051332",
		CreditorAccount: "GB29NWBK60161331926819",
		CreditorName:    "Acme Imports Ltd",
		CreditorCountry: "GB",
	}
}

func TestSimulate_PercentageFeeWithMinimum(t *testing.T) {
	p := newTestProvider()

	// 0.4% of 10000.00 = 40.00, above the 5.00 minimum.
	est, err := p.Simulate(context.Background(), request(domain.PaymentInternational, "10000.00"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !est.Fee.Amount.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("fee = %s, want 40.00", est.Fee.Amount)
	}

	// 0.4% of 100.00 = 0.40, below the minimum.
	est, err = p.Simulate(context.Background(), request(domain.PaymentInternational, "100.00"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !est.Fee.Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("fee = %s, want minimum 5.00", est.Fee.Amount)
	}
}

func TestSimulate_PrioritySettlesFaster(t *testing.T) {
	p := newTestProvider()

	std, err := p.Simulate(context.Background(), request(domain.PaymentInternational, "1000.00"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if want := monday.AddDate(0, 0, 2); !std.SettlementDate.Equal(want) {
		t.Errorf("standard settlement = %v, want D+2 %v", std.SettlementDate, want)
	}

	prio, err := p.Simulate(context.Background(), request(domain.PaymentInternationalPriority, "1000.00"))
	if err != nil {
		t.Fatalf("Simulate priority: %v", err)
	}
	if want := monday.AddDate(0, 0, 1); !prio.SettlementDate.Equal(want) {
		t.Errorf("priority settlement = %v, want D+1 %v", prio.SettlementDate, want)
	}
	// 0.8% of 1000.00 = 8.00, below the 10.00 priority minimum.
	if !prio.Fee.Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("priority fee = %s, want minimum 10.00", prio.Fee.Amount)
	}
}

func TestScreening_RestrictedCountry(t *testing.T) {
	p := newTestProvider()
	req := request(domain.PaymentInternational, "1000.00")
	req.CreditorCountry = "KP"

	var pf *domain.ProviderFailure
	if _, err := p.Simulate(context.Background(), req); !errors.As(err, &pf) || pf.Code != "COMPLIANCE_REJECTED" {
		t.Fatalf("Simulate: got %v, want COMPLIANCE_REJECTED", err)
	}
	if _, err := p.Execute(context.Background(), req); !errors.As(err, &pf) || pf.Code != "COMPLIANCE_REJECTED" {
		t.Fatalf("Execute: got %v, want COMPLIANCE_REJECTED", err)
	}
}

func TestScreening_WatchlistedName(t *testing.T) {
	p := newTestProvider()
	req := request(domain.PaymentInternational, "1000.00")
	req.CreditorName = "ACME Shell Holdings S.A."

	var pf *domain.ProviderFailure
	if _, err := p.Execute(context.Background(), req); !errors.As(err, &pf) || pf.Code != "COMPLIANCE_REJECTED" {
		t.Fatalf("got %v, want COMPLIANCE_REJECTED", err)
	}
}

func TestScreening_CleanCreditorPasses(t *testing.T) {
	p := newTestProvider()
	receipt, err := p.Execute(context.Background(), request(domain.PaymentInternational, "1000.00"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Status != domain.StatusExecuted {
		t.Errorf("status = %q", receipt.Status)
	}
}

func TestSchedule_NoRecurrence(t *testing.T) {
	p := newTestProvider()
	req := request(domain.PaymentInternational, "1000.00")

	var pf *domain.ProviderFailure
	_, err := p.Schedule(context.Background(), req, &domain.Schedule{
		ExecutionDate:     monday.AddDate(0, 0, 7),
		RecurrencePattern: "monthly",
	})
	if !errors.As(err, &pf) || pf.Code != "UNSUPPORTED_RECURRENCE" {
		t.Fatalf("got %v, want UNSUPPORTED_RECURRENCE", err)
	}

	receipt, err := p.Schedule(context.Background(), req, &domain.Schedule{ExecutionDate: monday.AddDate(0, 0, 7)})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if receipt.Status != domain.StatusScheduled {
		t.Errorf("status = %q", receipt.Status)
	}
}
