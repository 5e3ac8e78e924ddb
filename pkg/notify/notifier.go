package notify

import "context"

// Result is the outcome of one dispatch attempt to one recipient. A failed
// attempt carries the provider error; it is never surfaced as a Go error
// because escalation treats every dispatch as best-effort.
type Result struct {
	Recipient string
	Success   bool
	Error     string
}

// Notifier sends an alert message to a single phone number. Implementations
// must honor the context deadline so one unresponsive recipient cannot stall
// the escalation join.
type Notifier interface {
	Send(ctx context.Context, phoneNumber, message string) Result
}
