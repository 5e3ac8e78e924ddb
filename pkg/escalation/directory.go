package escalation

import (
	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

// Directory resolves the trusted contacts configured for a device. It is a
// read-only collaborator of the escalation workflow.
type Directory interface {
	FindContactsByDevice(deviceID string) ([]model.TrustedContact, error)
}

type storeDirectory struct {
	contacts storage.ContactStore
}

// NewStoreDirectory adapts the contact store into a Directory.
func NewStoreDirectory(contacts storage.ContactStore) Directory {
	return &storeDirectory{contacts: contacts}
}

func (d *storeDirectory) FindContactsByDevice(deviceID string) ([]model.TrustedContact, error) {
	return d.contacts.FindByDeviceID(deviceID)
}
