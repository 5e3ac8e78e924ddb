package memory

import (
	"sync"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

type deviceStore struct {
	store map[string]model.Device
	sync.RWMutex
}

func newDeviceStore() *deviceStore {
	return &deviceStore{
		store: make(map[string]model.Device),
	}
}

func (s *deviceStore) FetchAll() ([]model.Device, error) {
	s.RLock()
	defer s.RUnlock()
	models := make([]model.Device, 0, len(s.store))

	for _, m := range s.store {
		models = append(models, m)
	}

	return models, nil
}

func (s *deviceStore) FindByID(deviceID string) (*model.Device, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[deviceID]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) FindByToken(token string) (*model.Device, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.DeviceToken == token {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *deviceStore) Create(m *model.Device) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store[m.DeviceID]; ok {
		return storage.ErrConflict
	}

	// Set default values
	if m.Status == "" {
		m.Status = model.StatusOffline
	}

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	if m.LastSeen.IsZero() {
		m.LastSeen = m.CreatedAt
	}

	s.store[m.DeviceID] = *m

	return nil
}

func (s *deviceStore) UpdateStatus(deviceID string, status model.DeviceStatus, seenAt time.Time) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[deviceID]
	if !ok {
		return storage.ErrNotFound
	}

	m.Status = status
	m.LastSeen = seenAt
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[deviceID] = m

	return nil
}

func (s *deviceStore) UpdateTelemetry(deviceID string, location *model.Location, batteryLevel *int, seenAt time.Time) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[deviceID]
	if !ok {
		return storage.ErrNotFound
	}

	m.LastLocation = location
	if batteryLevel != nil {
		m.BatteryLevel = batteryLevel
	}
	m.LastSeen = seenAt
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[deviceID] = m

	return nil
}
