package domain

import (
	"errors"
	"strings"
	"time"
)

// AuthPayload is the authentication evidence attached to a request. Code and
// ChallengeID are empty on a first simulate call; a committing call that passed
// the SCA gate carries both.
type AuthPayload struct {
	Method      string `json:"method"`
	Recipient   string `json:"recipient"`
	Code        string `json:"authentication_code"`
	ChallengeID string `json:"challenge_id"`
}

// Request is the rail-agnostic payment request the orchestrator consumes.
// Rail-specific fields travel opaquely in Payload and are passed through to the
// resolved provider untouched.
type Request struct {
	RequestID    string       `json:"request_id"`
	ProviderType ProviderType `json:"provider_type,omitempty"`
	PaymentType  PaymentType  `json:"payment_type,omitempty"`

	Money           Money             `json:"money"`
	DebtorAccount   string            `json:"debtor_account"`
	CreditorAccount string            `json:"creditor_account"`
	CreditorName    string            `json:"creditor_name,omitempty"`
	CreditorCountry string            `json:"creditor_country,omitempty"`
	Payload         map[string]string `json:"payload,omitempty"`

	// SCA is the optional authentication payload; nil when the caller has not
	// authenticated (yet).
	SCA *AuthPayload `json:"sca,omitempty"`
	// SimulationReference links a committing call back to the simulate call
	// that issued its challenge. Empty on a first simulate.
	SimulationReference string `json:"simulation_reference,omitempty"`
}

// Schedule carries the extra fields of a schedule operation.
type Schedule struct {
	ExecutionDate     time.Time `json:"execution_date"`
	RecurrencePattern string    `json:"recurrence_pattern,omitempty"`
}

var (
	ErrNoTypeSelector  = errors.New("request needs a provider_type or payment_type selector")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrMissingCurrency = errors.New("currency is required")
	ErrMissingAccount  = errors.New("debtor and creditor accounts are required")
)

// Validate checks the fields the core consumes. Rail-specific payload content
// is the provider's problem.
func (r *Request) Validate() error {
	if r.ProviderType == "" && r.PaymentType == "" {
		return ErrNoTypeSelector
	}
	if !r.Money.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Money.Currency) == "" {
		return ErrMissingCurrency
	}
	if strings.TrimSpace(r.DebtorAccount) == "" || strings.TrimSpace(r.CreditorAccount) == "" {
		return ErrMissingAccount
	}
	return nil
}
