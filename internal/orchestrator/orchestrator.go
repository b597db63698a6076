// Package orchestrator implements the simulate-authenticate-execute protocol:
// every payment operation follows the same strictly ordered lifecycle of
// provider resolution, SCA requirement check, authentication gate, and
// provider invocation. Resolution and authentication rejections are handled
// here and never reach the provider; provider failures pass through verbatim.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"payment-rail-gateway/internal/audit"
	"payment-rail-gateway/internal/events"
	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/policy/engine"
	"payment-rail-gateway/internal/rails"
	scadomain "payment-rail-gateway/internal/sca/domain"
	scaservice "payment-rail-gateway/internal/sca/service"
	"payment-rail-gateway/internal/security"
	"payment-rail-gateway/internal/telemetry/otel"
)

// DefaultChallengeMethod is the delivery channel used when the caller does not
// name one.
const DefaultChallengeMethod = "sms"

// Resolver resolves rail providers by either axis. Absence is a normal
// outcome, never an error.
type Resolver interface {
	ResolveByProviderType(pt domain.ProviderType) (rails.Provider, bool)
	ResolveByPaymentType(pt domain.PaymentType) (rails.Provider, bool)
}

// Authenticator issues and verifies SCA challenges.
type Authenticator interface {
	Issue(ctx context.Context, method, recipient string) (*scadomain.Challenge, error)
	Verify(ctx context.Context, challengeID, code string) (*scadomain.Challenge, error)
}

// ReferenceProvider mints and validates simulation references.
type ReferenceProvider interface {
	Issue(challengeID string, providerType domain.ProviderType, paymentType domain.PaymentType, op domain.OperationType) (string, error)
	Validate(reference string) (*security.SimRefClaims, error)
}

// Orchestrator routes the five payment operations. It holds no payment state;
// each call is self-contained beyond the read-only registry.
type Orchestrator struct {
	resolver Resolver
	policy   engine.Evaluator
	auth     Authenticator
	refs     ReferenceProvider

	recorder audit.Recorder
	producer events.Producer
	metrics  *otel.OperationMetrics
	nowF     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAudit records every operation attempt to the audit log (best-effort).
func WithAudit(r audit.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithEvents publishes an operation event per attempt (fire-and-forget).
func WithEvents(p events.Producer) Option {
	return func(o *Orchestrator) { o.producer = p }
}

// WithMetrics records operation and rejection counters.
func WithMetrics(m *otel.OperationMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock injects the time source used for event timestamps.
func WithClock(nowF func() time.Time) Option {
	return func(o *Orchestrator) { o.nowF = nowF }
}

// New returns an Orchestrator over the given registry, policy evaluator,
// authenticator, and simulation-reference provider.
func New(resolver Resolver, policy engine.Evaluator, auth Authenticator, refs ReferenceProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		policy:   policy,
		auth:     auth,
		refs:     refs,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Simulate runs a non-committing simulation of an execute. When the eventual
// commit would need SCA, a fresh challenge is issued and correlated to the
// returned simulation reference. Nothing is committed.
func (o *Orchestrator) Simulate(ctx context.Context, req *domain.Request) (*domain.SimulationResult, error) {
	return o.simulate(ctx, req, domain.OperationSimulate)
}

// SimulateCancellation runs a non-committing simulation of a cancel.
func (o *Orchestrator) SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.SimulationResult, error) {
	return o.simulate(ctx, req, domain.OperationSimulateCancellation)
}

func (o *Orchestrator) simulate(ctx context.Context, req *domain.Request, op domain.OperationType) (*domain.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res := &domain.SimulationResult{Outcome: domain.Outcome{RequestID: req.RequestID}}

	p, ok := o.resolve(req)
	if !ok {
		o.rejectOutcome(&res.Outcome, domain.ErrKindProviderUnavailable, "no provider registered for the requested type", false)
		o.finish(ctx, req, op, &res.Outcome)
		return res, nil
	}

	// Requirement is decided for the committing counterpart: a simulate tells
	// the caller what the eventual execute (or cancel) will demand.
	required, err := o.scaRequired(ctx, req, p, op.CommittingCounterpart())
	if err != nil {
		o.rejectOutcome(&res.Outcome, domain.ErrKindProviderError, err.Error(), false)
		o.finish(ctx, req, op, &res.Outcome)
		return res, nil
	}
	res.SCARequired = required

	var challengeID string
	if required {
		method, recipient := challengeTarget(req)
		c, err := o.auth.Issue(ctx, method, recipient)
		if err != nil {
			o.rejectOutcome(&res.Outcome, domain.ErrKindProviderError, "issue sca challenge: "+err.Error(), false)
			o.finish(ctx, req, op, &res.Outcome)
			return res, nil
		}
		challengeID = c.ID
		res.Challenge = challengeInfo(c)

		// Single-round-trip flows: a code submitted alongside the simulate is
		// verified immediately and its outcome reported, but the challenge
		// stays usable for the committing call either way.
		if req.SCA != nil && req.SCA.Code != "" {
			id := req.SCA.ChallengeID
			if id == "" {
				id = c.ID
			}
			verified, verr := o.auth.Verify(ctx, id, req.SCA.Code)
			res.Challenge.Outcome = verifyOutcome(verified, verr)
			res.SCACompleted = verr == nil
		}
	}

	if o.refs != nil {
		ref, err := o.refs.Issue(challengeID, p.Type(), req.PaymentType, op)
		if err != nil {
			o.rejectOutcome(&res.Outcome, domain.ErrKindProviderError, "mint simulation reference: "+err.Error(), false)
			o.finish(ctx, req, op, &res.Outcome)
			return res, nil
		}
		res.SimulationReference = ref
	}

	var est *domain.Estimate
	if op == domain.OperationSimulateCancellation {
		est, err = p.SimulateCancellation(ctx, req)
	} else {
		est, err = p.Simulate(ctx, req)
	}
	if err != nil {
		o.providerReject(&res.Outcome, err)
		o.finish(ctx, req, op, &res.Outcome)
		return res, nil
	}

	res.Success = true
	res.Status = domain.StatusSimulated
	res.Feasible = true
	res.EstimatedFee = est.Fee
	res.EstimatedExecution = est.ExecutionDate
	res.EstimatedSettlement = est.SettlementDate
	o.finish(ctx, req, op, &res.Outcome)
	return res, nil
}

// Execute runs the committing execute operation behind the SCA gate.
func (o *Orchestrator) Execute(ctx context.Context, req *domain.Request) (*domain.ExecutionResult, error) {
	res := &domain.ExecutionResult{Outcome: domain.Outcome{RequestID: req.RequestID}}
	receipt, err := o.commit(ctx, req, domain.OperationExecute, &res.Outcome, nil)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		res.TransactionReference = receipt.Reference
	}
	return res, nil
}

// Cancel runs the committing cancel operation behind the SCA gate.
func (o *Orchestrator) Cancel(ctx context.Context, req *domain.Request) (*domain.CancellationResult, error) {
	res := &domain.CancellationResult{Outcome: domain.Outcome{RequestID: req.RequestID}}
	receipt, err := o.commit(ctx, req, domain.OperationCancel, &res.Outcome, nil)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		res.CancellationReference = receipt.Reference
	}
	return res, nil
}

// Schedule runs the committing schedule operation behind the SCA gate.
func (o *Orchestrator) Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.ScheduleResult, error) {
	res := &domain.ScheduleResult{Outcome: domain.Outcome{RequestID: req.RequestID}}
	receipt, err := o.commit(ctx, req, domain.OperationSchedule, &res.Outcome, sched)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		res.ScheduleReference = receipt.Reference
		res.NextExecution = sched.ExecutionDate
	}
	return res, nil
}

// commit is the shared committing-operation protocol: resolve, requirement
// check, authentication gate, provider invocation, in that order. A non-nil
// receipt means the provider ran and succeeded; out carries the rejection
// otherwise.
func (o *Orchestrator) commit(ctx context.Context, req *domain.Request, op domain.OperationType, out *domain.Outcome, sched *domain.Schedule) (*domain.Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, ok := o.resolve(req)
	if !ok {
		o.rejectOutcome(out, domain.ErrKindProviderUnavailable, "no provider registered for the requested type", false)
		o.finish(ctx, req, op, out)
		return nil, nil
	}

	required, err := o.scaRequired(ctx, req, p, op)
	if err != nil {
		o.rejectOutcome(out, domain.ErrKindProviderError, err.Error(), false)
		o.finish(ctx, req, op, out)
		return nil, nil
	}
	out.SCARequired = required

	if required {
		if req.SCA == nil {
			o.rejectOutcome(out, domain.ErrKindAuthRequired, "operation requires strong customer authentication", true)
			o.finish(ctx, req, op, out)
			return nil, nil
		}
		if !o.gate(ctx, req, out) {
			o.finish(ctx, req, op, out)
			return nil, nil
		}
		out.SCACompleted = true
	}

	var receipt *domain.Receipt
	switch op {
	case domain.OperationExecute:
		receipt, err = p.Execute(ctx, req)
	case domain.OperationCancel:
		receipt, err = p.Cancel(ctx, req)
	case domain.OperationSchedule:
		receipt, err = p.Schedule(ctx, req, sched)
	}
	if err != nil {
		o.providerReject(out, err)
		o.finish(ctx, req, op, out)
		return nil, nil
	}

	out.Success = true
	out.Status = receipt.Status
	out.ProviderReference = receipt.Reference
	o.finish(ctx, req, op, out)
	return receipt, nil
}

// gate validates the attached authentication payload, including simulation
// reference correlation. It returns true when the gate passes; otherwise the
// outcome carries the rejection and the provider must not be invoked.
func (o *Orchestrator) gate(ctx context.Context, req *domain.Request, out *domain.Outcome) bool {
	challengeID := req.SCA.ChallengeID

	if req.SimulationReference != "" && o.refs != nil {
		claims, err := o.refs.Validate(req.SimulationReference)
		if err != nil {
			o.rejectOutcome(out, domain.ErrKindAuthCodeInvalid, "simulation reference is invalid or expired", false)
			return false
		}
		// The committing call must act on the challenge its simulation issued.
		if claims.ChallengeID != "" && challengeID != "" && claims.ChallengeID != challengeID {
			o.rejectOutcome(out, domain.ErrKindAuthCodeInvalid, "challenge does not belong to this simulation", false)
			return false
		}
		if challengeID == "" {
			challengeID = claims.ChallengeID
		}
	}

	c, err := o.auth.Verify(ctx, challengeID, req.SCA.Code)
	if err == nil {
		if c != nil {
			out.Challenge = challengeInfo(c)
			out.Challenge.Outcome = string(c.Status)
		}
		return true
	}
	if c != nil {
		out.Challenge = challengeInfo(c)
		out.Challenge.Outcome = string(c.Status)
	}

	switch {
	case errors.Is(err, scaservice.ErrCodeMissing):
		o.rejectOutcome(out, domain.ErrKindAuthCodeMissing, "authentication code is missing", true)
	case errors.Is(err, scaservice.ErrExpired):
		o.rejectOutcome(out, domain.ErrKindAuthExpired, "authentication challenge expired; simulate again to obtain a new one", false)
	case errors.Is(err, scaservice.ErrTooManyAttempts):
		o.rejectOutcome(out, domain.ErrKindAuthCodeInvalid, "authentication attempt limit reached; simulate again to obtain a new challenge", false)
	case errors.Is(err, scaservice.ErrCodeInvalid):
		retry := c == nil || c.Status != scadomain.StatusFailed
		o.rejectOutcome(out, domain.ErrKindAuthCodeInvalid, "authentication code is invalid", retry)
	case errors.Is(err, scaservice.ErrChallengeNotFound):
		o.rejectOutcome(out, domain.ErrKindAuthCodeInvalid, "unknown authentication challenge; simulate again to obtain a new one", false)
	default:
		o.rejectOutcome(out, domain.ErrKindProviderError, "verify authentication: "+err.Error(), false)
	}
	return false
}

// resolve picks the provider by ProviderType when the request names one,
// otherwise by PaymentType route.
func (o *Orchestrator) resolve(req *domain.Request) (rails.Provider, bool) {
	if req.ProviderType != "" {
		return o.resolver.ResolveByProviderType(req.ProviderType)
	}
	return o.resolver.ResolveByPaymentType(req.PaymentType)
}

func (o *Orchestrator) scaRequired(ctx context.Context, req *domain.Request, p rails.Provider, op domain.OperationType) (bool, error) {
	if o.policy == nil {
		return false, nil
	}
	dec, err := o.policy.EvaluateSCA(ctx, engine.Input{
		Operation:    op,
		ProviderType: p.Type(),
		PaymentType:  req.PaymentType,
		Amount:       req.Money.Amount,
		Currency:     req.Money.Currency,
	})
	if err != nil {
		return false, err
	}
	return dec.Required, nil
}

func (o *Orchestrator) rejectOutcome(out *domain.Outcome, kind domain.ErrorKind, msg string, retryWithAuth bool) {
	out.Success = false
	out.Status = domain.StatusRejected
	out.ErrorKind = kind
	out.ErrorMessage = msg
	out.RequiresAuthorization = retryWithAuth
}

// providerReject surfaces a provider failure without downgrading it: the
// provider's own code and message are preserved in the result.
func (o *Orchestrator) providerReject(out *domain.Outcome, err error) {
	var pf *domain.ProviderFailure
	if errors.As(err, &pf) {
		o.rejectOutcome(out, domain.ErrKindProviderError, pf.Code+": "+pf.Message, false)
		return
	}
	o.rejectOutcome(out, domain.ErrKindProviderError, err.Error(), false)
}

// finish records audit, event, and metric side effects for one attempt. All
// best-effort; the outcome is already final.
func (o *Orchestrator) finish(ctx context.Context, req *domain.Request, op domain.OperationType, out *domain.Outcome) {
	providerType := string(req.ProviderType)
	if providerType == "" {
		if p, ok := o.resolve(req); ok {
			providerType = string(p.Type())
		}
	}

	if o.recorder != nil {
		meta, _ := json.Marshal(map[string]any{
			"amount":   req.Money.Amount.String(),
			"currency": req.Money.Currency,
		})
		o.recorder.Record(ctx, audit.Entry{
			RequestID:    req.RequestID,
			Operation:    string(op),
			ProviderType: providerType,
			PaymentType:  string(req.PaymentType),
			Status:       string(out.Status),
			ErrorKind:    string(out.ErrorKind),
			Metadata:     string(meta),
		})
	}

	if o.producer != nil {
		events.EmitAsync(o.producer, ctx, &events.OperationEvent{
			RequestID:         req.RequestID,
			Operation:         string(op),
			ProviderType:      providerType,
			PaymentType:       string(req.PaymentType),
			Status:            string(out.Status),
			ErrorKind:         string(out.ErrorKind),
			ProviderReference: out.ProviderReference,
			SCARequired:       out.SCARequired,
			SCACompleted:      out.SCACompleted,
			OccurredAt:        o.nowF(),
		})
	}

	o.metrics.RecordOperation(ctx, string(op), providerType, string(out.Status))
	if out.ErrorKind != domain.ErrKindNone {
		o.metrics.RecordRejection(ctx, string(op), string(out.ErrorKind))
	}
}

func challengeTarget(req *domain.Request) (method, recipient string) {
	method = DefaultChallengeMethod
	if req.SCA != nil {
		if req.SCA.Method != "" {
			method = req.SCA.Method
		}
		recipient = req.SCA.Recipient
	}
	return method, recipient
}

func challengeInfo(c *scadomain.Challenge) *domain.ChallengeInfo {
	return &domain.ChallengeInfo{
		ChallengeID:     c.ID,
		Method:          c.Method,
		MaskedRecipient: c.MaskedRecipient,
		ExpiresAt:       c.ExpiresAt,
	}
}

func verifyOutcome(c *scadomain.Challenge, err error) string {
	if err == nil {
		return string(scadomain.StatusSucceeded)
	}
	if c != nil {
		return string(c.Status)
	}
	return "unknown"
}
