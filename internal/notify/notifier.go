package notify

import "context"

// Notifier is the outbound port to the notification gateway (push/email
// fan-out lives there, not here). Calls are best-effort: callers log
// failures and move on, they never fold them into their own error state.
type Notifier interface {
	Notify(ctx context.Context, userID string, title string, body string, metadata map[string]string) error
}
