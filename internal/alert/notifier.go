// Package alert delivers best-effort operator notifications. Delivery
// failure is the caller's to log and never to propagate: losing an alert
// must not fail a reclaim.
package alert

import "context"

// Notifier delivers a text message to the operator channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop is a Notifier that discards every message. Used when no alert channel
// is configured.
type Nop struct{}

// Send discards the message.
func (Nop) Send(context.Context, string) error { return nil }
