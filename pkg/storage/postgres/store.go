package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Procodx/familyGuardian/pkg/storage"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	devices   *deviceStore
	panics    *panicStore
	contacts  *contactStore
	operators *operatorStore
}

// NewStore creates a new PostgreSQL based Storage interface
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		devices:   newDeviceStore(db),
		panics:    newPanicStore(db),
		contacts:  newContactStore(db),
		operators: newOperatorStore(db),
	}
}

// Devices returns a sub-store for managing the Device model
func (s *store) Devices() storage.DeviceStore {
	return s.devices
}

// Panics returns a sub-store for managing the PanicEvent model
func (s *store) Panics() storage.PanicStore {
	return s.panics
}

// Contacts returns a sub-store for managing the TrustedContact model
func (s *store) Contacts() storage.ContactStore {
	return s.contacts
}

// Operators returns a sub-store for managing the Operator model
func (s *store) Operators() storage.OperatorStore {
	return s.operators
}

// translateUniqueViolation maps a unique constraint violation to the storage
// conflict sentinel so callers do not depend on driver error codes.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrConflict
	}
	return err
}
