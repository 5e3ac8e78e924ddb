package memory

import (
	"sync"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

type operatorStore struct {
	store map[string]model.Operator
	sync.RWMutex
}

func newOperatorStore() *operatorStore {
	return &operatorStore{
		store: make(map[string]model.Operator),
	}
}

func (s *operatorStore) FindByEmail(email string) (*model.Operator, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[email]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *operatorStore) Create(m *model.Operator) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store[m.Email]; ok {
		return storage.ErrConflict
	}

	if m.Role == "" {
		m.Role = "admin"
	}
	m.CreatedAt = time.Now().Round(time.Second).UTC()
	s.store[m.Email] = *m

	return nil
}
