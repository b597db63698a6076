package domain

import (
	"testing"
	"time"
)

func TestStatus_Terminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusIssued, false},
		{StatusVerifying, false},
		{StatusSucceeded, true},
		{StatusFailed, true},
		{StatusExpired, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Errorf("Terminal(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestChallenge_ExpiredAt(t *testing.T) {
	exp := time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC)
	c := &Challenge{ExpiresAt: exp}

	if c.ExpiredAt(exp.Add(-time.Second)) {
		t.Error("one second before expiry should not be expired")
	}
	if !c.ExpiredAt(exp) {
		t.Error("the expiry instant itself must be expired")
	}
	if !c.ExpiredAt(exp.Add(time.Second)) {
		t.Error("after expiry must be expired")
	}
}

func TestMaskRecipient(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"+34600123456", "********3456"},
		{"600123456", "*****3456"},
		{"alice@example.com", "a***@example.com"},
		{"abc", "***"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MaskRecipient(tc.in); got != tc.want {
			t.Errorf("MaskRecipient(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
