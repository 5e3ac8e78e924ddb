package presence

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

// Broadcast topics emitted by the registry.
const (
	TopicDeviceStatusUpdate   = "device_status_update"
	TopicDeviceLocationUpdate = "device_location_update"
)

// ErrInvalidCoordinates is returned for telemetry whose latitude or longitude
// is not a finite number. The report is dropped without any state change.
var ErrInvalidCoordinates = errors.New("presence: coordinates are not finite numbers")

// Broadcaster delivers an event payload to all connected operator sessions.
type Broadcaster interface {
	Broadcast(topic string, payload interface{})
}

// StatusUpdate is the payload of a device_status_update broadcast.
type StatusUpdate struct {
	DeviceID string             `json:"deviceId"`
	Status   model.DeviceStatus `json:"status"`
}

// LocationUpdate is the payload of a device_location_update broadcast.
type LocationUpdate struct {
	DeviceID     string    `json:"deviceId"`
	DeviceName   string    `json:"deviceName"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Accuracy     float64   `json:"accuracy"`
	Timestamp    time.Time `json:"timestamp"`
	BatteryLevel *int      `json:"batteryLevel,omitempty"`
	LastSeen     time.Time `json:"lastSeen"`
}

// Registry is the single authoritative read/write surface for device status,
// location and battery. Writes to the same device are serialized through a
// per-device mutex; unrelated devices never contend.
type Registry struct {
	devices storage.DeviceStore
	bus     Broadcaster

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry creates a registry on top of the durable device store. Every
// registry mutation is followed by a broadcast on bus within the same
// per-device critical section.
func NewRegistry(devices storage.DeviceStore, bus Broadcaster) *Registry {
	return &Registry{
		devices: devices,
		bus:     bus,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (r *Registry) deviceLock(deviceID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[deviceID] = l
	}
	return l
}

// Serialize runs fn while holding the device's critical section. Multi-step
// workflows (panic trigger, acknowledge) use it to keep their store writes and
// broadcasts from interleaving with other mutations of the same device.
func (r *Registry) Serialize(deviceID string, fn func() error) error {
	l := r.deviceLock(deviceID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// SetStatus overwrites the device status, touches last seen and broadcasts
// the new status. Last-writer-wins; ordering per device is guaranteed by the
// per-device lock.
func (r *Registry) SetStatus(deviceID string, status model.DeviceStatus) (*model.Device, error) {
	var device *model.Device
	err := r.Serialize(deviceID, func() error {
		var err error
		device, err = r.ApplyStatus(deviceID, status)
		return err
	})
	return device, err
}

// ApplyStatus is SetStatus without acquiring the device lock. The caller must
// hold the device's critical section via Serialize.
func (r *Registry) ApplyStatus(deviceID string, status model.DeviceStatus) (*model.Device, error) {
	now := time.Now().Round(time.Second).UTC()
	if err := r.devices.UpdateStatus(deviceID, status, now); err != nil {
		return nil, err
	}

	device, err := r.devices.FindByID(deviceID)
	if err != nil {
		return nil, err
	}

	r.bus.Broadcast(TopicDeviceStatusUpdate, StatusUpdate{
		DeviceID: deviceID,
		Status:   status,
	})

	log.WithFields(log.Fields{
		"device_id": deviceID,
		"status":    status,
	}).Info("presence registry updated device status")

	return device, nil
}

// RecordTelemetry overwrites the device's last location and battery level,
// touches last seen and broadcasts a location update. Telemetry with
// non-finite coordinates is rejected with ErrInvalidCoordinates and produces
// no state change and no broadcast.
func (r *Registry) RecordTelemetry(deviceID string, location model.Location, batteryLevel *int) (*model.Device, error) {
	if !location.Valid() {
		return nil, ErrInvalidCoordinates
	}

	var device *model.Device
	err := r.Serialize(deviceID, func() error {
		now := time.Now().Round(time.Second).UTC()
		loc := location
		if err := r.devices.UpdateTelemetry(deviceID, &loc, batteryLevel, now); err != nil {
			return err
		}

		var err error
		device, err = r.devices.FindByID(deviceID)
		if err != nil {
			return err
		}

		r.bus.Broadcast(TopicDeviceLocationUpdate, LocationUpdate{
			DeviceID:     device.DeviceID,
			DeviceName:   device.DeviceName,
			Latitude:     location.Latitude,
			Longitude:    location.Longitude,
			Accuracy:     location.Accuracy,
			Timestamp:    location.Timestamp,
			BatteryLevel: device.BatteryLevel,
			LastSeen:     device.LastSeen,
		})
		return nil
	})
	return device, err
}

// Device returns a snapshot of one device.
func (r *Registry) Device(deviceID string) (*model.Device, error) {
	return r.devices.FindByID(deviceID)
}

// Devices returns a snapshot of all devices. There is no transactional
// guarantee across devices.
func (r *Registry) Devices() ([]model.Device, error) {
	return r.devices.FetchAll()
}
