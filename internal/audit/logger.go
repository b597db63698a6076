// Package audit records every payment operation attempt, successful or not.
// Recording is best-effort: an audit failure never fails the operation.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"payment-rail-gateway/internal/audit/domain"
	auditrepo "payment-rail-gateway/internal/audit/repository"
)

// Recorder writes a single audit entry per operation attempt. Record is
// best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Entry is the caller-provided part of an audit log; ID and CreatedAt are
// filled in by the logger.
type Entry struct {
	RequestID    string
	Operation    string
	ProviderType string
	PaymentType  string
	Status       string
	ErrorKind    string
	Metadata     string
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
	nowF func() time.Time
}

// NewLogger returns a Recorder that persists to repo. repo may be nil; then
// Record is a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo, nowF: func() time.Time { return time.Now().UTC() }}
}

// Record writes one audit log entry. Best-effort: errors are logged and not
// returned.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:           uuid.New().String(),
		RequestID:    e.RequestID,
		Operation:    e.Operation,
		ProviderType: e.ProviderType,
		PaymentType:  e.PaymentType,
		Status:       e.Status,
		ErrorKind:    e.ErrorKind,
		Metadata:     e.Metadata,
		CreatedAt:    l.nowF(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s/%s: %v", e.Operation, e.RequestID, err)
	}
}
