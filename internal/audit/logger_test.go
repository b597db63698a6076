package audit

import (
	"context"
	"testing"
	"time"

	auditrepo "payment-rail-gateway/internal/audit/repository"
)

func TestRecord_PersistsEntry(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l := NewLogger(repo)
	l.nowF = func() time.Time { return now }

	l.Record(context.Background(), Entry{
		RequestID:    "req-1",
		Operation:    "execute",
		ProviderType: "domestic",
		PaymentType:  "instant",
		Status:       "executed",
		Metadata:     `{"amount":"150.00","currency":"EUR"}`,
	})

	logs, err := repo.ListByRequest(context.Background(), "req-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByRequest: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	got := logs[0]
	if got.ID == "" {
		t.Error("ID should be generated")
	}
	if got.Operation != "execute" || got.Status != "executed" {
		t.Errorf("log = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

func TestRecord_NilRepoIsNoop(t *testing.T) {
	l := NewLogger(nil)
	// Must not panic.
	l.Record(context.Background(), Entry{RequestID: "req-1", Operation: "execute"})
}

func TestRecord_NilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Record(context.Background(), Entry{RequestID: "req-1"})
}
