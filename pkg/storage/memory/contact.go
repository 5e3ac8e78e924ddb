package memory

import (
	"sync"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

type contactStore struct {
	store map[string]model.TrustedContact
	sync.RWMutex
}

func newContactStore() *contactStore {
	return &contactStore{
		store: make(map[string]model.TrustedContact),
	}
}

func (s *contactStore) FindByDeviceID(deviceID string) ([]model.TrustedContact, error) {
	s.RLock()
	defer s.RUnlock()

	models := make([]model.TrustedContact, 0)
	for _, m := range s.store {
		if m.DeviceID == deviceID {
			models = append(models, m)
		}
	}

	return models, nil
}

func (s *contactStore) Create(m *model.TrustedContact) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store[m.ContactID]; ok {
		return storage.ErrConflict
	}

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	s.store[m.ContactID] = *m

	return nil
}

func (s *contactStore) Delete(contactID string) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store[contactID]; !ok {
		return storage.ErrNotFound
	}

	delete(s.store, contactID)

	return nil
}
