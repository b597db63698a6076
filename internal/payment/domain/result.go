package domain

import (
	"fmt"
	"time"
)

// ErrorKind classifies a rejection. Resolution and authentication kinds are
// produced inside the orchestrator; ErrProvider passes the provider's own
// code/message through verbatim.
type ErrorKind string

const (
	ErrKindNone                ErrorKind = ""
	ErrKindProviderUnavailable ErrorKind = "PROVIDER_UNAVAILABLE"
	ErrKindAuthRequired        ErrorKind = "AUTH_REQUIRED"
	ErrKindAuthCodeMissing     ErrorKind = "AUTH_CODE_MISSING"
	ErrKindAuthCodeInvalid     ErrorKind = "AUTH_CODE_INVALID"
	ErrKindAuthExpired         ErrorKind = "AUTH_EXPIRED"
	ErrKindProviderError       ErrorKind = "PROVIDER_ERROR"
)

// OperationStatus is the resulting status carried in every outcome.
type OperationStatus string

const (
	StatusSimulated OperationStatus = "simulated"
	StatusExecuted  OperationStatus = "executed"
	StatusCancelled OperationStatus = "cancelled"
	StatusScheduled OperationStatus = "scheduled"
	StatusRejected  OperationStatus = "rejected"
)

// ChallengeInfo is the caller-visible view of an SCA challenge: enough to
// complete authentication, never the code or its hash.
type ChallengeInfo struct {
	ChallengeID     string    `json:"challenge_id"`
	Method          string    `json:"method"`
	MaskedRecipient string    `json:"masked_recipient"`
	ExpiresAt       time.Time `json:"expires_at"`
	Outcome         string    `json:"outcome,omitempty"`
}

// Outcome is the envelope every operation result shares. Every rejection path
// populates ErrorKind; callers never receive a bare failure.
type Outcome struct {
	Success               bool            `json:"success"`
	Status                OperationStatus `json:"status"`
	RequestID             string          `json:"request_id"`
	ProviderReference     string          `json:"provider_reference,omitempty"`
	SCARequired           bool            `json:"sca_required"`
	SCACompleted          bool            `json:"sca_completed"`
	RequiresAuthorization bool            `json:"requires_authorization"`
	Challenge             *ChallengeInfo  `json:"sca_challenge,omitempty"`
	ErrorKind             ErrorKind       `json:"error_kind,omitempty"`
	ErrorMessage          string          `json:"error_message,omitempty"`
}

// SimulationResult describes feasibility and non-binding estimates. Nothing is
// committed by the call that produced it.
type SimulationResult struct {
	Outcome
	Feasible            bool      `json:"feasible"`
	EstimatedFee        Money     `json:"estimated_fee"`
	EstimatedExecution  time.Time `json:"estimated_execution_date"`
	EstimatedSettlement time.Time `json:"estimated_settlement_date"`
	SimulationReference string    `json:"simulation_reference,omitempty"`
}

// ExecutionResult is the outcome of an execute operation.
type ExecutionResult struct {
	Outcome
	TransactionReference string `json:"transaction_reference,omitempty"`
}

// CancellationResult is the outcome of a cancel operation.
type CancellationResult struct {
	Outcome
	CancellationReference string `json:"cancellation_reference,omitempty"`
}

// ScheduleResult is the outcome of a schedule operation.
type ScheduleResult struct {
	Outcome
	ScheduleReference string    `json:"schedule_reference,omitempty"`
	NextExecution     time.Time `json:"next_execution,omitempty"`
}

// Estimate is what a provider returns from a simulation: fee and dates only,
// non-binding by contract.
type Estimate struct {
	Fee            Money
	ExecutionDate  time.Time
	SettlementDate time.Time
}

// Receipt is what a provider returns from a committing operation.
type Receipt struct {
	Reference string
	Status    OperationStatus
}

// ProviderFailure is a typed business failure raised by a rail provider. The
// orchestrator surfaces Code and Message unchanged as a PROVIDER_ERROR.
type ProviderFailure struct {
	Code    string
	Message string
}

func (f *ProviderFailure) Error() string {
	return fmt.Sprintf("provider failure %s: %s", f.Code, f.Message)
}
