package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// SMSSender delivers codes through an HTTP SMS gateway (route=otp).
type SMSSender struct {
	APIKey     string
	BaseURL    string
	SenderID   string
	HTTPClient *http.Client
}

// NewSMSSender returns a sender using the given API key and optional base
// URL/sender id.
func NewSMSSender(apiKey, baseURL, senderID string) *SMSSender {
	if baseURL == "" {
		baseURL = "https://www.smslocal.com/dev/bulkV2"
	}
	return &SMSSender{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		SenderID:   senderID,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts the code to the gateway. recipient should be digits only
// (country code + number). Does not log the code.
func (s *SMSSender) Send(ctx context.Context, method, recipient, code string) error {
	if method != "sms" {
		return fmt.Errorf("delivery: unsupported method %q", method)
	}
	if s.APIKey == "" {
		return fmt.Errorf("delivery: SMS API key not configured")
	}
	body := map[string]interface{}{
		"route":     "otp",
		"numbers":   recipient,
		"variables": code,
	}
	if s.SenderID != "" {
		body["sender_id"] = s.SenderID
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.APIKey)
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delivery: sms request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
