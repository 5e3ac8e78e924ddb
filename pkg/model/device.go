package model

import (
	"math"
	"time"
)

// DeviceStatus is the live presence state of a wearer device.
type DeviceStatus string

const (
	StatusOffline  DeviceStatus = "OFFLINE"
	StatusNormal   DeviceStatus = "NORMAL"
	StatusCritical DeviceStatus = "CRITICAL"
)

// Location is a single position fix reported by a device.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid reports whether the coordinates are finite numbers. Devices in the
// field occasionally send NaN when their GPS fix is stale.
func (l Location) Valid() bool {
	return !math.IsNaN(l.Latitude) && !math.IsInf(l.Latitude, 0) &&
		!math.IsNaN(l.Longitude) && !math.IsInf(l.Longitude, 0)
}

// Device is a model of the persistency layer. The DeviceToken is the opaque
// credential presented during the realtime handshake; it is generated once at
// registration and never rotated.
type Device struct {
	DeviceID     string
	DeviceName   string
	DeviceToken  string
	Status       DeviceStatus
	LastLocation *Location
	BatteryLevel *int
	LastSeen     time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
