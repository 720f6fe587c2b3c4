package notify

import (
	"context"
	"log"
)

// Notifier delivers a message to a candidate, optionally with an attachment.
// Delivery failures are non-fatal to the flows that call it.
type Notifier interface {
	Deliver(ctx context.Context, recipient, subject, body string, attachment []byte) error
}

// LogNotifier writes deliveries to the process log. It stands in for a real
// mail transport, which is an external collaborator of this engine.
type LogNotifier struct{}

func (LogNotifier) Deliver(_ context.Context, recipient, subject, _ string, attachment []byte) error {
	log.Printf("notify: to=%s subject=%q attachment=%dB", recipient, subject, len(attachment))
	return nil
}
