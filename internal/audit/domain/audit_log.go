package domain

import "time"

// AuditLog represents one recorded payment operation attempt.
type AuditLog struct {
	ID           string
	RequestID    string
	Operation    string
	ProviderType string
	PaymentType  string
	Status       string
	ErrorKind    string
	Metadata     string
	CreatedAt    time.Time
}
