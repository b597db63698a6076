// Package delivery sends SCA codes to the customer over an out-of-band channel.
package delivery

import "context"

// Sender delivers a plain authentication code to a recipient over the channel
// named by method (e.g. "sms"). Implementations must not log the code.
type Sender interface {
	Send(ctx context.Context, method, recipient, code string) error
}

// NopSender discards codes. Used in dev mode, where the code is retrievable
// from the dev code store instead.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, method, recipient, code string) error {
	return nil
}
