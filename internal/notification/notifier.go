package notification

import "log"

// Notifier delivers fire-and-forget notifications about approval outcomes.
// Implementations never return errors; delivery failure is swallowed because
// match-state correctness outranks side-effect completeness.
type Notifier interface {
	Notify(userID uint, event string, message string)
}

// LogNotifier writes notifications to the process log. Outbound delivery
// (push, email) is owned by a separate service that consumes the same events.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(userID uint, event string, message string) {
	log.Printf("notify user %d [%s]: %s", userID, event, message)
}
