// Package notifier delivers best-effort notifications about patient record
// changes. Failures are for the caller to log, never to surface: a failed
// notification must not fail the business operation that triggered it.
package notifier

import (
	"context"
)

// Notifier sends a single message about a state change.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}
