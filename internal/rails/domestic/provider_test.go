package domestic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
)

// monday pins the clock to a midweek business day.
var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestProvider() *Provider {
	return New("EUR", WithClock(func() time.Time { return monday }))
}

func request(pt domain.PaymentType, currency string) *domain.Request {
	return &domain.Request{
		RequestID:       "req-1",
		PaymentType:     pt,
		Money:           domain.Money{Amount: decimal.RequireFromString("150.00"), Currency: currency},
		DebtorAccount:   "ES9121000418450200051332",
		CreditorAccount: "ES7921000813610123456789",
	}
}

func TestSimulate_InstantSameDay(t *testing.T) {
	p := newTestProvider()
	est, err := p.Simulate(context.Background(), request(domain.PaymentInstant, "EUR"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !est.Fee.Amount.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("instant fee = %s, want 0.50", est.Fee.Amount)
	}
	if !est.SettlementDate.Equal(monday) {
		t.Errorf("instant settlement = %v, want same day", est.SettlementDate)
	}
}

func TestSimulate_StandardNextBusinessDay(t *testing.T) {
	p := newTestProvider()
	est, err := p.Simulate(context.Background(), request(domain.PaymentStandard, "EUR"))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !est.Fee.Amount.Equal(decimal.RequireFromString("0.20")) {
		t.Errorf("standard fee = %s, want 0.20", est.Fee.Amount)
	}
	if want := monday.AddDate(0, 0, 1); !est.SettlementDate.Equal(want) {
		t.Errorf("standard settlement = %v, want %v", est.SettlementDate, want)
	}
}

func TestUnsupportedCurrency(t *testing.T) {
	p := newTestProvider()
	_, err := p.Simulate(context.Background(), request(domain.PaymentInstant, "USD"))
	var pf *domain.ProviderFailure
	if !errors.As(err, &pf) || pf.Code != "UNSUPPORTED_CURRENCY" {
		t.Fatalf("got %v, want UNSUPPORTED_CURRENCY failure", err)
	}
	if _, err := p.Execute(context.Background(), request(domain.PaymentInstant, "USD")); !errors.As(err, &pf) {
		t.Fatalf("Execute with wrong currency: %v", err)
	}
}

func TestExecute(t *testing.T) {
	p := newTestProvider()
	receipt, err := p.Execute(context.Background(), request(domain.PaymentInstant, "EUR"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(receipt.Reference, "DOM-") {
		t.Errorf("reference = %q", receipt.Reference)
	}
	if receipt.Status != domain.StatusExecuted {
		t.Errorf("status = %q", receipt.Status)
	}
}

func TestSchedule_Validation(t *testing.T) {
	p := newTestProvider()
	req := request(domain.PaymentStandard, "EUR")

	_, err := p.Schedule(context.Background(), req, &domain.Schedule{ExecutionDate: monday.AddDate(0, 0, -1)})
	var pf *domain.ProviderFailure
	if !errors.As(err, &pf) || pf.Code != "SCHEDULE_DATE_PAST" {
		t.Fatalf("past date: got %v, want SCHEDULE_DATE_PAST", err)
	}

	_, err = p.Schedule(context.Background(), req, &domain.Schedule{
		ExecutionDate:     monday.AddDate(0, 0, 7),
		RecurrencePattern: "hourly",
	})
	if !errors.As(err, &pf) || pf.Code != "UNSUPPORTED_RECURRENCE" {
		t.Fatalf("bad recurrence: got %v, want UNSUPPORTED_RECURRENCE", err)
	}

	receipt, err := p.Schedule(context.Background(), req, &domain.Schedule{
		ExecutionDate:     monday.AddDate(0, 0, 7),
		RecurrencePattern: "monthly",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if receipt.Status != domain.StatusScheduled {
		t.Errorf("status = %q", receipt.Status)
	}
}

func TestPaymentTypes(t *testing.T) {
	p := newTestProvider()
	if p.Type() != domain.ProviderDomestic {
		t.Errorf("type = %q", p.Type())
	}
	got := p.PaymentTypes()
	if len(got) != 2 || got[0] != domain.PaymentInstant || got[1] != domain.PaymentStandard {
		t.Errorf("payment types = %v", got)
	}
}
