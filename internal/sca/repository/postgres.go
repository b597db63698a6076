package repository

import (
	"context"
	"database/sql"
	"errors"

	"payment-rail-gateway/internal/sca/domain"
)

// PostgresRepository persists challenges in the sca_challenges table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	const q = `
		INSERT INTO sca_challenges
			(id, method, recipient, masked_recipient, code_hash, attempts, max_attempts, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Method, c.Recipient, c.MaskedRecipient, c.CodeHash,
		c.Attempts, c.MaxAttempts, string(c.Status), c.CreatedAt, c.ExpiresAt)
	return err
}

// GetByID returns the challenge for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	const q = `
		SELECT id, method, recipient, masked_recipient, code_hash, attempts, max_attempts, status, created_at, expires_at
		FROM sca_challenges WHERE id = $1`
	var c domain.Challenge
	var status string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Method, &c.Recipient, &c.MaskedRecipient, &c.CodeHash,
		&c.Attempts, &c.MaxAttempts, &status, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Status = domain.Status(status)
	return &c, nil
}

// Update persists attempt count and status for an existing challenge.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Challenge) error {
	const q = `UPDATE sca_challenges SET attempts = $2, status = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Attempts, string(c.Status))
	return err
}

// Delete removes the challenge by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sca_challenges WHERE id = $1`, id)
	return err
}
