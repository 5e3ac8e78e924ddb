package storage

import (
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

// Interface is implemented by the storage
type Interface interface {
	Devices() DeviceStore
	Panics() PanicStore
	Contacts() ContactStore
	Operators() OperatorStore
}

// DeviceStore is responsible for managing the Device model
type DeviceStore interface {
	FetchAll() ([]model.Device, error)
	FindByID(deviceID string) (*model.Device, error)
	FindByToken(token string) (*model.Device, error)
	Create(m *model.Device) error
	UpdateStatus(deviceID string, status model.DeviceStatus, seenAt time.Time) error
	UpdateTelemetry(deviceID string, location *model.Location, batteryLevel *int, seenAt time.Time) error
}

// PanicStore is responsible for managing the PanicEvent model
type PanicStore interface {
	FetchAll() ([]model.PanicEvent, error)
	FindByID(id string) (*model.PanicEvent, error)
	FindActiveByDeviceID(deviceID string) (*model.PanicEvent, error)
	Create(m *model.PanicEvent) error
	AppendNotificationLog(id string, attempts []model.NotificationAttempt) error
	Resolve(id string, at time.Time) error
}

// ContactStore is responsible for managing the TrustedContact model
type ContactStore interface {
	FindByDeviceID(deviceID string) ([]model.TrustedContact, error)
	Create(m *model.TrustedContact) error
	Delete(contactID string) error
}

// OperatorStore is responsible for managing the Operator model
type OperatorStore interface {
	FindByEmail(email string) (*model.Operator, error)
	Create(m *model.Operator) error
}
