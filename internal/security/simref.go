package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"payment-rail-gateway/internal/payment/domain"
)

// ErrInvalidReference is returned when a simulation reference is malformed,
// expired, or not signed by this gateway.
var ErrInvalidReference = errors.New("invalid simulation reference")

// SimRefClaims holds the JWT claims of a simulation reference. ChallengeID is
// empty when the simulation required no SCA.
type SimRefClaims struct {
	jwt.RegisteredClaims
	ChallengeID  string `json:"challenge_id,omitempty"`
	ProviderType string `json:"provider_type"`
	PaymentType  string `json:"payment_type,omitempty"`
	Operation    string `json:"operation"`
}

// SimRefProvider mints and validates simulation references using RS256 or
// ES256 (private/public key).
type SimRefProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	ttl        time.Duration
	nowF       func() time.Time
}

// NewSimRefProvider returns a SimRefProvider that signs with the given private
// key. ttl bounds how long a committing call can follow its simulation.
func NewSimRefProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration) *SimRefProvider {
	return &SimRefProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a simulation reference correlating the simulation to the given
// challenge id (empty when no SCA was required).
func (p *SimRefProvider) Issue(challengeID string, providerType domain.ProviderType, paymentType domain.PaymentType, op domain.OperationType) (string, error) {
	now := p.nowF()
	claims := SimRefClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		ChallengeID:  challengeID,
		ProviderType: string(providerType),
		PaymentType:  string(paymentType),
		Operation:    string(op),
	}
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidReference
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// Validate parses and validates the reference (signature, exp, iss, aud) and
// returns its claims.
func (p *SimRefProvider) Validate(reference string) (*SimRefClaims, error) {
	token, err := jwt.ParseWithClaims(reference, &SimRefClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			return p.publicKey, nil
		default:
			return nil, ErrInvalidReference
		}
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidReference
	}
	claims, ok := token.Claims.(*SimRefClaims)
	if !ok {
		return nil, ErrInvalidReference
	}
	return claims, nil
}
