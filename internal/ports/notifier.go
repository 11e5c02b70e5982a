package ports

import "context"

// Notifier defines the interface for the outbound push-notification sender.
// Delivery is best-effort: a failed send must never roll back or block a
// ledger write that has already been applied. Callers log the error and
// move on.
type Notifier interface {
	// Send delivers a notification with the given title and message.
	// Implementations enforce the transport's length limits.
	Send(ctx context.Context, title, message string) error
}
