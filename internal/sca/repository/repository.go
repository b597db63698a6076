// Package repository defines persistence for SCA challenges. The core treats
// durability as a collaborator concern; implementations ship for memory
// (dev/test), Redis (TTL-keyed), and Postgres.
package repository

import (
	"context"
	"time"

	"payment-rail-gateway/internal/sca/domain"
)

// Repository persists SCA challenges. GetByID returns nil, nil when the
// challenge does not exist (absence is not an error).
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)
	// Update persists attempt count and status changes for an existing challenge.
	Update(ctx context.Context, c *domain.Challenge) error
	Delete(ctx context.Context, id string) error
}

// DefaultChallengeTTL is the default challenge expiry.
const DefaultChallengeTTL = 15 * time.Minute

// DefaultMaxAttempts is the default number of verification attempts allowed
// per challenge.
const DefaultMaxAttempts = 3
