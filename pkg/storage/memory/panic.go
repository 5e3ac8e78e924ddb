package memory

import (
	"sync"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

type panicStore struct {
	store map[string]model.PanicEvent
	sync.RWMutex
}

func newPanicStore() *panicStore {
	return &panicStore{
		store: make(map[string]model.PanicEvent),
	}
}

func (s *panicStore) FetchAll() ([]model.PanicEvent, error) {
	s.RLock()
	defer s.RUnlock()
	models := make([]model.PanicEvent, 0, len(s.store))

	for _, m := range s.store {
		models = append(models, m)
	}

	return models, nil
}

func (s *panicStore) FindByID(id string) (*model.PanicEvent, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[id]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *panicStore) FindActiveByDeviceID(deviceID string) (*model.PanicEvent, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.DeviceID == deviceID && m.Status == model.PanicStatusActive {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *panicStore) Create(m *model.PanicEvent) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store[m.ID]; ok {
		return storage.ErrConflict
	}

	if m.Status == "" {
		m.Status = model.PanicStatusActive
	}

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.ID] = *m

	return nil
}

func (s *panicStore) AppendNotificationLog(id string, attempts []model.NotificationAttempt) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.NotificationLog = append(m.NotificationLog, attempts...)
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}

func (s *panicStore) Resolve(id string, at time.Time) error {
	s.Lock()
	defer s.Unlock()

	m, ok := s.store[id]
	if !ok {
		return storage.ErrNotFound
	}

	m.Status = model.PanicStatusResolved
	m.ResolvedAt = &at
	m.UpdatedAt = time.Now().Round(time.Second).UTC()
	s.store[id] = m

	return nil
}
