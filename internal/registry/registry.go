// Package registry resolves rail providers by provider type or payment type.
// Discovery is explicit: a bootstrap list calls Register once per candidate.
// After bootstrap the registry is read-only and safe for unsynchronized
// concurrent reads; re-discovery swaps in a whole new snapshot atomically.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/rails"
)

var (
	// ErrDuplicateProvider is returned when a provider type is registered twice
	// and override is not allowed. Ambiguous registrations fail fast by default.
	ErrDuplicateProvider = errors.New("provider type already registered")
	// ErrInvalidProviderType is returned for registrations under an unknown tag.
	ErrInvalidProviderType = errors.New("invalid provider type")
)

// snapshot is one immutable generation of the registry. Readers load it once
// and never observe partial updates.
type snapshot struct {
	providers map[domain.ProviderType]rails.Provider
	routes    map[domain.PaymentType]domain.ProviderType
}

// Registry maps provider types to live provider instances and payment types to
// provider types. It holds no payment data.
type Registry struct {
	snap          atomic.Pointer[snapshot]
	allowOverride bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithOverride enables permissive last-registered-wins behavior on provider
// collisions instead of the default fail-fast.
func WithOverride() Option {
	return func(r *Registry) { r.allowOverride = true }
}

// New returns a Registry with the given static payment-type routes and no
// registered providers. routes is copied; the caller's map is not retained.
func New(routes map[domain.PaymentType]domain.ProviderType, opts ...Option) *Registry {
	r := &Registry{}
	for _, o := range opts {
		o(r)
	}
	rc := make(map[domain.PaymentType]domain.ProviderType, len(routes))
	for k, v := range routes {
		rc[k] = v
	}
	r.snap.Store(&snapshot{
		providers: make(map[domain.ProviderType]rails.Provider),
		routes:    rc,
	})
	return r
}

// Register associates the provider's type with the instance. Called once per
// discovered candidate during bootstrap, on a single goroutine. Returns
// ErrDuplicateProvider on collision unless override is enabled.
func (r *Registry) Register(p rails.Provider) error {
	pt := p.Type()
	if !pt.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProviderType, pt)
	}
	cur := r.snap.Load()
	if _, exists := cur.providers[pt]; exists && !r.allowOverride {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, pt)
	}
	next := &snapshot{
		providers: make(map[domain.ProviderType]rails.Provider, len(cur.providers)+1),
		routes:    cur.routes,
	}
	for k, v := range cur.providers {
		next.providers[k] = v
	}
	next.providers[pt] = p
	r.snap.Store(next)
	return nil
}

// Rebuild replaces all registrations with the given providers in one atomic
// swap. Readers see either the old snapshot or the complete new one, never a
// partially-updated state. The duplicate policy applies within the new set.
func (r *Registry) Rebuild(providers []rails.Provider) error {
	cur := r.snap.Load()
	next := &snapshot{
		providers: make(map[domain.ProviderType]rails.Provider, len(providers)),
		routes:    cur.routes,
	}
	for _, p := range providers {
		pt := p.Type()
		if !pt.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidProviderType, pt)
		}
		if _, exists := next.providers[pt]; exists && !r.allowOverride {
			return fmt.Errorf("%w: %q", ErrDuplicateProvider, pt)
		}
		next.providers[pt] = p
	}
	r.snap.Store(next)
	return nil
}

// ResolveByProviderType returns the registered provider for pt. Absence is a
// normal outcome, reported with ok=false, never an error.
func (r *Registry) ResolveByProviderType(pt domain.ProviderType) (rails.Provider, bool) {
	p, ok := r.snap.Load().providers[pt]
	return p, ok
}

// ResolveByPaymentType looks up the static route for pt and delegates to
// ResolveByProviderType. No route means absent, not an error.
func (r *Registry) ResolveByPaymentType(pt domain.PaymentType) (rails.Provider, bool) {
	snap := r.snap.Load()
	provType, ok := snap.routes[pt]
	if !ok {
		return nil, false
	}
	p, ok := snap.providers[provType]
	return p, ok
}

// ListRegisteredProviderTypes returns the registered provider types, sorted.
// Introspection only; the orchestrator never calls this.
func (r *Registry) ListRegisteredProviderTypes() []domain.ProviderType {
	snap := r.snap.Load()
	out := make([]domain.ProviderType, 0, len(snap.providers))
	for pt := range snap.providers {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
