package memory

import "github.com/Procodx/familyGuardian/pkg/storage"

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	devices   *deviceStore
	panics    *panicStore
	contacts  *contactStore
	operators *operatorStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	return &store{
		devices:   newDeviceStore(),
		panics:    newPanicStore(),
		contacts:  newContactStore(),
		operators: newOperatorStore(),
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
