// Package domain holds the SCA challenge model and its state machine states.
package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a challenge. Succeeded, Failed, and Expired
// are terminal: once reached, further verification attempts are refused and the
// caller must obtain a new challenge.
type Status string

const (
	StatusIssued    Status = "issued"
	StatusVerifying Status = "verifying"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// Challenge represents one authentication attempt. The plain code is never
// stored; CodeHash holds its SHA-256.
type Challenge struct {
	ID              string
	Method          string
	Recipient       string
	MaskedRecipient string
	CodeHash        string
	Attempts        int
	MaxAttempts     int
	Status          Status
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// ExpiredAt reports whether the challenge is expired at the given instant.
// The expiry timestamp itself is already expired (verification at t == ExpiresAt
// must not succeed).
func (c *Challenge) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// MaskRecipient hides all but the last few characters of a phone number or
// address, e.g. "+34600123456" → "********3456", "a@example.com" → "a***@example.com".
func MaskRecipient(recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ""
	}
	if at := strings.IndexByte(recipient, '@'); at > 0 {
		local := recipient[:at]
		return local[:1] + "***" + recipient[at:]
	}
	const visible = 4
	if len(recipient) <= visible {
		return strings.Repeat("*", len(recipient))
	}
	return strings.Repeat("*", len(recipient)-visible) + recipient[len(recipient)-visible:]
}
