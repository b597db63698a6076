// Package bootstrap builds the provider registry from the configured rail
// list. Discovery is explicit: every enabled provider type maps to one
// constructor call and one Register.
package bootstrap

import (
	"fmt"

	"payment-rail-gateway/internal/payment/domain"
	"payment-rail-gateway/internal/rails"
	"payment-rail-gateway/internal/rails/crossborder"
	"payment-rail-gateway/internal/rails/domestic"
	"payment-rail-gateway/internal/registry"
)

// Build constructs the registry with the default payment-type routes and
// registers one provider per enabled type. An unknown name or a duplicate
// registration fails the whole bootstrap.
func Build(enabled []string, homeCurrency string, allowOverride bool) (*registry.Registry, error) {
	var opts []registry.Option
	if allowOverride {
		opts = append(opts, registry.WithOverride())
	}
	reg := registry.New(domain.DefaultRoutes(), opts...)

	for _, name := range enabled {
		p, err := newProvider(name, homeCurrency)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("register %q: %w", name, err)
		}
	}
	return reg, nil
}

func newProvider(name, homeCurrency string) (rails.Provider, error) {
	switch domain.ProviderType(name) {
	case domain.ProviderDomestic:
		return domestic.New(homeCurrency), nil
	case domain.ProviderCrossBorder:
		return crossborder.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", registry.ErrInvalidProviderType, name)
	}
}
