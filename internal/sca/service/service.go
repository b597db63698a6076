// Package service implements the SCA challenge lifecycle: issue a challenge,
// verify a submitted code, and enforce terminal states, attempt limits, and
// expiry. The orchestrator maps the sentinel errors to result error kinds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payment-rail-gateway/internal/devcode"
	"payment-rail-gateway/internal/sca"
	"payment-rail-gateway/internal/sca/delivery"
	"payment-rail-gateway/internal/sca/domain"
	"payment-rail-gateway/internal/sca/repository"
)

// Sentinel errors for challenge verification; each is an independent,
// distinguishable failure cause.
var (
	ErrChallengeNotFound = errors.New("sca challenge not found")
	ErrCodeMissing       = errors.New("authentication code missing")
	ErrCodeInvalid       = errors.New("authentication code invalid")
	ErrExpired           = errors.New("sca challenge expired")
	ErrTooManyAttempts   = errors.New("sca challenge attempt limit reached")
)

// Authenticator issues and validates SCA challenges. It is stateless beyond
// the challenge repository; each challenge is created per call and never
// reused across simulations.
type Authenticator struct {
	repo        repository.Repository
	sender      delivery.Sender
	devStore    devcode.Store
	genCode     sca.CodeGenerator
	ttl         time.Duration
	maxAttempts int
	nowF        func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock injects the time source, for reproducible expiry behavior in tests.
func WithClock(nowF func() time.Time) Option {
	return func(a *Authenticator) { a.nowF = nowF }
}

// WithCodeGenerator injects the code source. Production uses sca.GenerateCode.
func WithCodeGenerator(g sca.CodeGenerator) Option {
	return func(a *Authenticator) { a.genCode = g }
}

// WithTTL sets the challenge expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(a *Authenticator) { a.ttl = ttl }
}

// WithMaxAttempts sets the per-challenge verification attempt limit.
func WithMaxAttempts(n int) Option {
	return func(a *Authenticator) { a.maxAttempts = n }
}

// WithDevStore stores plain codes for dev-only retrieval. Never set in
// production.
func WithDevStore(s devcode.Store) Option {
	return func(a *Authenticator) { a.devStore = s }
}

// NewAuthenticator returns an Authenticator backed by the given repository and
// code sender.
func NewAuthenticator(repo repository.Repository, sender delivery.Sender, opts ...Option) *Authenticator {
	a := &Authenticator{
		repo:        repo,
		sender:      sender,
		genCode:     sca.GenerateCode,
		ttl:         repository.DefaultChallengeTTL,
		maxAttempts: repository.DefaultMaxAttempts,
		nowF:        func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Issue creates a new ISSUED challenge for the given method and recipient,
// persists it, and delivers the code out of band. Every call mints a fresh
// challenge; expired or consumed challenges are never reused.
func (a *Authenticator) Issue(ctx context.Context, method, recipient string) (*domain.Challenge, error) {
	code, err := a.genCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	now := a.nowF()
	c := &domain.Challenge{
		ID:              uuid.New().String(),
		Method:          method,
		Recipient:       recipient,
		MaskedRecipient: domain.MaskRecipient(recipient),
		CodeHash:        sca.HashCode(code),
		Attempts:        0,
		MaxAttempts:     a.maxAttempts,
		Status:          domain.StatusIssued,
		CreatedAt:       now,
		ExpiresAt:       now.Add(a.ttl),
	}
	if err := a.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	if a.devStore != nil {
		a.devStore.Put(ctx, c.ID, code, c.ExpiresAt)
	}
	if a.sender != nil {
		if err := a.sender.Send(ctx, method, recipient, code); err != nil {
			return nil, fmt.Errorf("deliver code: %w", err)
		}
	}
	return c, nil
}

// Verify validates a submitted code against the challenge. A nil error means
// SUCCEEDED. The returned challenge reflects the state after this submission.
//
// An empty code is rejected with ErrCodeMissing before the challenge is
// touched: no attempt is consumed and the state does not change, so a caller
// that forgot the code can still resubmit.
//
// Success requires all three independently: the code matches, the attempt
// count stays within the limit, and the current time is strictly before the
// expiry timestamp. Verification at or after expiry yields ErrExpired
// regardless of code correctness.
func (a *Authenticator) Verify(ctx context.Context, challengeID, code string) (*domain.Challenge, error) {
	if challengeID == "" {
		// An empty payload is a missing code, not an unknown challenge: the
		// caller can still resubmit with credentials.
		if code == "" {
			return nil, ErrCodeMissing
		}
		return nil, ErrChallengeNotFound
	}
	if code == "" {
		c, err := a.repo.GetByID(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrChallengeNotFound
		}
		return c, ErrCodeMissing
	}
	c, err := a.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrChallengeNotFound
	}

	now := a.nowF()

	// Terminal states are sticky: the stored outcome never changes here.
	switch c.Status {
	case domain.StatusSucceeded:
		// A challenge verified during simulate remains usable for the
		// committing call; re-verification with the same code is idempotent.
		if sca.CodeEqual(code, c.CodeHash) && !c.ExpiredAt(now) {
			return c, nil
		}
		if c.ExpiredAt(now) {
			return c, ErrExpired
		}
		return c, ErrCodeInvalid
	case domain.StatusFailed:
		return c, ErrTooManyAttempts
	case domain.StatusExpired:
		return c, ErrExpired
	}

	// Expiry wins over code correctness.
	if c.ExpiredAt(now) {
		c.Status = domain.StatusExpired
		if err := a.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		return c, ErrExpired
	}

	c.Attempts++
	if c.Attempts > c.MaxAttempts {
		c.Status = domain.StatusFailed
		if err := a.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		return c, ErrTooManyAttempts
	}

	if !sca.CodeEqual(code, c.CodeHash) {
		if c.Attempts >= c.MaxAttempts {
			c.Status = domain.StatusFailed
		} else {
			c.Status = domain.StatusVerifying
		}
		if err := a.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		return c, ErrCodeInvalid
	}

	c.Status = domain.StatusSucceeded
	if err := a.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
