package crossborder

import (
	"strings"

	"payment-rail-gateway/internal/payment/domain"
)

// Embargoed destinations the rail refuses outright (ISO 3166-1 alpha-2).
var restrictedCountries = map[string]struct{}{
	"KP": {},
	"IR": {},
	"SY": {},
	"CU": {},
}

// Name fragments matched case-insensitively against the creditor name.
// A real deployment loads consolidated sanctions lists; the shape of the
// check is what matters to callers: a typed COMPLIANCE_REJECTED failure.
var watchlistFragments = []string{
	"acme shell holdings",
	"global sanctions test",
}

// screen checks the creditor against the restricted-country and watchlist
// rules. Returns a ProviderFailure on a hit, nil otherwise.
func screen(req *domain.Request) error {
	country := strings.ToUpper(strings.TrimSpace(req.CreditorCountry))
	if _, hit := restrictedCountries[country]; hit {
		return &domain.ProviderFailure{
			Code:    "COMPLIANCE_REJECTED",
			Message: "destination country is restricted: " + country,
		}
	}
	name := strings.ToLower(req.CreditorName)
	for _, frag := range watchlistFragments {
		if name != "" && strings.Contains(name, frag) {
			return &domain.ProviderFailure{
				Code:    "COMPLIANCE_REJECTED",
				Message: "creditor name matched a watchlist entry",
			}
		}
	}
	return nil
}
