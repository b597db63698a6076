package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/policy/engine"
	"payment-rail-gateway/internal/rails"
	"payment-rail-gateway/internal/registry"
	scarepo "payment-rail-gateway/internal/sca/repository"
	scaservice "payment-rail-gateway/internal/sca/service"
	"payment-rail-gateway/internal/security"
)

const testCode = "123456"

// fakeProvider counts invocations so tests can assert the provider was (not)
// reached.
type fakeProvider struct {
	typ       domain.ProviderType
	executes  int
	cancels   int
	schedules int
	simErr    error
	execErr   error
}

var _ rails.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) Type() domain.ProviderType { return p.typ }
func (p *fakeProvider) PaymentTypes() []domain.PaymentType {
	return []domain.PaymentType{domain.PaymentInstant, domain.PaymentStandard}
}
func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }
func (p *fakeProvider) Simulate(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	if p.simErr != nil {
		return nil, p.simErr
	}
	return &domain.Estimate{
		Fee: domain.Money{Amount: decimal.RequireFromString("0.50"), Currency: "EUR"},
	}, nil
}
func (p *fakeProvider) Execute(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	if p.execErr != nil {
		return nil, p.execErr
	}
	p.executes++
	return &domain.Receipt{Reference: "TX-1", Status: domain.StatusExecuted}, nil
}
func (p *fakeProvider) Cancel(ctx context.Context, req *domain.Request) (*domain.Receipt, error) {
	p.cancels++
	return &domain.Receipt{Reference: "CXL-1", Status: domain.StatusCancelled}, nil
}
func (p *fakeProvider) SimulateCancellation(ctx context.Context, req *domain.Request) (*domain.Estimate, error) {
	return &domain.Estimate{Fee: domain.Money{Amount: decimal.Zero, Currency: "EUR"}}, nil
}
func (p *fakeProvider) Schedule(ctx context.Context, req *domain.Request, sched *domain.Schedule) (*domain.Receipt, error) {
	p.schedules++
	return &domain.Receipt{Reference: "SCH-1", Status: domain.StatusScheduled}, nil
}

// stubPolicy returns a fixed requirement decision.
type stubPolicy struct {
	required bool
}

func (s stubPolicy) EvaluateSCA(ctx context.Context, in engine.Input) (engine.Decision, error) {
	return engine.Decision{Required: s.required}, nil
}

type fixture struct {
	orch     *Orchestrator
	provider *fakeProvider
	auth     *scaservice.Authenticator
	now      *time.Time
}

func newFixture(t *testing.T, scaRequired bool) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	reg := registry.New(domain.DefaultRoutes())
	provider := &fakeProvider{typ: domain.ProviderDomestic}
	if err := reg.Register(provider); err != nil {
		t.Fatalf("register: %v", err)
	}

	auth := scaservice.NewAuthenticator(
		scarepo.NewMemoryRepository(),
		nil,
		scaservice.WithCodeGenerator(func() (string, error) { return testCode, nil }),
		scaservice.WithClock(func() time.Time { return now }),
	)

	refs, err := security.NewTestSimRefProvider()
	if err != nil {
		t.Fatalf("simref provider: %v", err)
	}

	orch := New(reg, stubPolicy{required: scaRequired}, auth, refs,
		WithClock(func() time.Time { return now }))
	return &fixture{orch: orch, provider: provider, auth: auth, now: &now}
}

func baseRequest() *domain.Request {
	return &domain.Request{
		RequestID:       "req-1",
		PaymentType:     domain.PaymentInstant,
		Money:           domain.Money{Amount: decimal.RequireFromString("150.00"), Currency: "EUR"},
		DebtorAccount:   "ES9121000418450200051332",
		CreditorAccount: "ES7921000813610123456789",
	}
}

func TestExecute_ProviderUnavailable(t *testing.T) {
	f := newFixture(t, false)
	req := baseRequest()
	req.PaymentType = ""
	req.ProviderType = domain.ProviderCrossBorder // not registered

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("expected rejection")
	}
	if res.ErrorKind != domain.ErrKindProviderUnavailable {
		t.Errorf("error kind = %q, want PROVIDER_UNAVAILABLE", res.ErrorKind)
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_AuthRequired_NoPayload(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.orch.Execute(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("expected rejection")
	}
	if res.ErrorKind != domain.ErrKindAuthRequired {
		t.Errorf("error kind = %q, want AUTH_REQUIRED", res.ErrorKind)
	}
	if !res.RequiresAuthorization {
		t.Error("requiresAuthorization should be true: a resubmission with a code can change the outcome")
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_AuthCodeMissing(t *testing.T) {
	f := newFixture(t, true)
	c, err := f.auth.Issue(context.Background(), "sms", "+34600123456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := baseRequest()
	req.SCA = &domain.AuthPayload{ChallengeID: c.ID}

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindAuthCodeMissing {
		t.Errorf("error kind = %q, want AUTH_CODE_MISSING", res.ErrorKind)
	}
	if !res.RequiresAuthorization {
		t.Error("requiresAuthorization should be true")
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_EmptyAuthPayload(t *testing.T) {
	f := newFixture(t, true)

	req := baseRequest()
	req.SCA = &domain.AuthPayload{} // attached, but no challenge id and no code

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindAuthCodeMissing {
		t.Errorf("error kind = %q, want AUTH_CODE_MISSING", res.ErrorKind)
	}
	if !res.RequiresAuthorization {
		t.Error("requiresAuthorization should be true: the caller can resubmit with credentials")
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_HappyPathWithSCA(t *testing.T) {
	f := newFixture(t, true)
	c, err := f.auth.Issue(context.Background(), "sms", "+34600123456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := baseRequest()
	req.SCA = &domain.AuthPayload{ChallengeID: c.ID, Code: testCode}

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q: %s", res.ErrorKind, res.ErrorMessage)
	}
	if !res.SCARequired || !res.SCACompleted {
		t.Errorf("sca flags = required %v completed %v, want both true", res.SCARequired, res.SCACompleted)
	}
	if res.TransactionReference != "TX-1" {
		t.Errorf("transaction reference = %q", res.TransactionReference)
	}
	if res.Status != domain.StatusExecuted {
		t.Errorf("status = %q, want executed", res.Status)
	}
	if f.provider.executes != 1 {
		t.Errorf("provider invoked %d times, want 1", f.provider.executes)
	}
}

func TestExecute_AuthExpired_ProviderNeverInvoked(t *testing.T) {
	f := newFixture(t, true)
	c, err := f.auth.Issue(context.Background(), "sms", "+34600123456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	*f.now = c.ExpiresAt // exactly at expiry

	req := baseRequest()
	req.SCA = &domain.AuthPayload{ChallengeID: c.ID, Code: testCode}

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindAuthExpired {
		t.Errorf("error kind = %q, want AUTH_EXPIRED", res.ErrorKind)
	}
	if res.RequiresAuthorization {
		t.Error("an expired challenge cannot be fixed by resubmitting; requiresAuthorization should be false")
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_AuthCodeInvalid(t *testing.T) {
	f := newFixture(t, true)
	c, err := f.auth.Issue(context.Background(), "sms", "+34600123456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := baseRequest()
	req.SCA = &domain.AuthPayload{ChallengeID: c.ID, Code: "000000"}

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindAuthCodeInvalid {
		t.Errorf("error kind = %q, want AUTH_CODE_INVALID", res.ErrorKind)
	}
	if !res.RequiresAuthorization {
		t.Error("attempts remain; requiresAuthorization should be true")
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_NoSCARequired(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.orch.Execute(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q", res.ErrorKind)
	}
	if res.SCARequired || res.SCACompleted {
		t.Error("sca flags should be false when not required")
	}
	if f.provider.executes != 1 {
		t.Errorf("provider invoked %d times, want 1", f.provider.executes)
	}
}

func TestExecute_ProviderFailurePassthrough(t *testing.T) {
	f := newFixture(t, false)
	f.provider.execErr = &domain.ProviderFailure{Code: "UNSUPPORTED_CURRENCY", Message: "domestic rail settles only in EUR"}

	res, err := f.orch.Execute(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindProviderError {
		t.Errorf("error kind = %q, want PROVIDER_ERROR", res.ErrorKind)
	}
	if res.ErrorMessage != "UNSUPPORTED_CURRENCY: domestic rail settles only in EUR" {
		t.Errorf("provider code/message not preserved: %q", res.ErrorMessage)
	}
}

func TestSimulate_IssuesChallengeAndReference(t *testing.T) {
	f := newFixture(t, true)

	req := baseRequest()
	req.SCA = &domain.AuthPayload{Method: "sms", Recipient: "+34600123456"}

	res, err := f.orch.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !res.Success || !res.Feasible {
		t.Fatalf("expected feasible simulation, got %q", res.ErrorKind)
	}
	if !res.SCARequired {
		t.Error("scaRequired should be true")
	}
	if res.Challenge == nil || res.Challenge.ChallengeID == "" {
		t.Fatal("a challenge should be issued and attached")
	}
	if res.Challenge.MaskedRecipient == "+34600123456" {
		t.Error("recipient must be masked in the result")
	}
	if res.SimulationReference == "" {
		t.Fatal("a simulation reference should be minted")
	}

	refs, _ := security.NewTestSimRefProvider()
	claims, err := refs.Validate(res.SimulationReference)
	if err != nil {
		t.Fatalf("minted reference does not validate: %v", err)
	}
	if claims.ChallengeID != res.Challenge.ChallengeID {
		t.Errorf("reference correlates %q, want %q", claims.ChallengeID, res.Challenge.ChallengeID)
	}
}

func TestSimulate_TwiceYieldsIndependentChallenges(t *testing.T) {
	f := newFixture(t, true)

	req := baseRequest()
	r1, err := f.orch.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	r2, err := f.orch.Simulate(context.Background(), req)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if r1.Challenge.ChallengeID == r2.Challenge.ChallengeID {
		t.Error("identical simulate input must yield independent challenges")
	}
}

func TestSimulate_NoSCARequired(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.orch.Simulate(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.SCARequired || res.Challenge != nil {
		t.Error("no challenge should be issued when SCA is not required")
	}
	if res.SimulationReference == "" {
		t.Error("a reference is still minted for the committing call")
	}
	if !res.EstimatedFee.Amount.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("estimated fee = %s", res.EstimatedFee.Amount)
	}
}

func TestExecute_SimulationReferenceCorrelation(t *testing.T) {
	f := newFixture(t, true)

	// Full simulate-authenticate-execute round trip.
	simReq := baseRequest()
	simReq.SCA = &domain.AuthPayload{Method: "sms", Recipient: "+34600123456"}
	sim, err := f.orch.Simulate(context.Background(), simReq)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	exec := baseRequest()
	exec.SimulationReference = sim.SimulationReference
	exec.SCA = &domain.AuthPayload{ChallengeID: sim.Challenge.ChallengeID, Code: testCode}
	res, err := f.orch.Execute(context.Background(), exec)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("round trip failed: %q %s", res.ErrorKind, res.ErrorMessage)
	}
}

func TestExecute_SimulationReferenceMismatch(t *testing.T) {
	f := newFixture(t, true)

	simReq := baseRequest()
	sim, err := f.orch.Simulate(context.Background(), simReq)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	// A different challenge than the one the simulation issued.
	other, err := f.auth.Issue(context.Background(), "sms", "+34600123456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	exec := baseRequest()
	exec.SimulationReference = sim.SimulationReference
	exec.SCA = &domain.AuthPayload{ChallengeID: other.ID, Code: testCode}
	res, err := f.orch.Execute(context.Background(), exec)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("mismatched challenge must be rejected")
	}
	if res.ErrorKind != domain.ErrKindAuthCodeInvalid {
		t.Errorf("error kind = %q, want AUTH_CODE_INVALID", res.ErrorKind)
	}
	if f.provider.executes != 0 {
		t.Error("provider must not be invoked")
	}
}

func TestExecute_GarbageSimulationReference(t *testing.T) {
	f := newFixture(t, true)
	c, _ := f.auth.Issue(context.Background(), "sms", "+34600123456")

	req := baseRequest()
	req.SimulationReference = "not-a-reference"
	req.SCA = &domain.AuthPayload{ChallengeID: c.ID, Code: testCode}

	res, err := f.orch.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ErrorKind != domain.ErrKindAuthCodeInvalid {
		t.Errorf("error kind = %q, want AUTH_CODE_INVALID", res.ErrorKind)
	}
}

func TestExecute_ReferenceSuppliesChallengeID(t *testing.T) {
	f := newFixture(t, true)

	sim, err := f.orch.Simulate(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	// Caller sends only the reference and the code; the challenge id comes
	// from the reference claims.
	exec := baseRequest()
	exec.SimulationReference = sim.SimulationReference
	exec.SCA = &domain.AuthPayload{Code: testCode}
	res, err := f.orch.Execute(context.Background(), exec)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %q: %s", res.ErrorKind, res.ErrorMessage)
	}
}

func TestCancelAndSchedule(t *testing.T) {
	f := newFixture(t, false)

	cres, err := f.orch.Cancel(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cres.Success || cres.CancellationReference != "CXL-1" {
		t.Errorf("cancel = %+v", cres)
	}

	execDate := f.now.Add(48 * time.Hour)
	sres, err := f.orch.Schedule(context.Background(), baseRequest(), &domain.Schedule{ExecutionDate: execDate})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !sres.Success || sres.ScheduleReference != "SCH-1" {
		t.Errorf("schedule = %+v", sres)
	}
	if !sres.NextExecution.Equal(execDate) {
		t.Errorf("next execution = %v, want %v", sres.NextExecution, execDate)
	}
	if f.provider.cancels != 1 || f.provider.schedules != 1 {
		t.Errorf("provider invocations: cancels=%d schedules=%d", f.provider.cancels, f.provider.schedules)
	}
}

func TestSimulateCancellation(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.orch.SimulateCancellation(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("SimulateCancellation: %v", err)
	}
	if !res.Success || !res.Feasible {
		t.Fatalf("expected feasible cancellation simulation, got %q", res.ErrorKind)
	}
	if res.Status != domain.StatusSimulated {
		t.Errorf("status = %q, want simulated", res.Status)
	}
}

func TestValidation_Errors(t *testing.T) {
	f := newFixture(t, false)

	req := baseRequest()
	req.Money.Amount = decimal.Zero
	if _, err := f.orch.Execute(context.Background(), req); err == nil {
		t.Error("zero amount should fail validation")
	}

	req = baseRequest()
	req.PaymentType = ""
	if _, err := f.orch.Simulate(context.Background(), req); err == nil {
		t.Error("missing type selector should fail validation")
	}
}
