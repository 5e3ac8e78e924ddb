package model

import "time"

// TrustedContact is a phone-number recipient configured to receive emergency
// notifications for a given device.
type TrustedContact struct {
	ContactID    string
	DeviceID     string
	Name         string
	PhoneNumber  string
	Relationship string

	CreatedAt time.Time
}
