package model

import "time"

// PanicStatus is the lifecycle state of an emergency episode. RESOLVED is
// terminal and set exactly once.
type PanicStatus string

const (
	PanicStatusActive   PanicStatus = "ACTIVE"
	PanicStatusResolved PanicStatus = "RESOLVED"
)

// NotificationAttempt records the outcome of one escalation dispatch to one
// recipient. The per-event log is append-only and written in a single batch
// after all dispatches settled.
type NotificationAttempt struct {
	Recipient string    `json:"recipient"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PanicEvent is the durable record of one emergency episode, from trigger to
// resolution. A device has at most one ACTIVE event at a time.
type PanicEvent struct {
	ID           string
	DeviceID     string
	Location     *Location
	BatteryLevel *int
	TriggeredAt  time.Time
	Status       PanicStatus
	ResolvedAt   *time.Time

	NotificationLog []NotificationAttempt

	CreatedAt time.Time
	UpdatedAt time.Time
}
