package resource

import (
	"fmt"
	"sort"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

type ContactResource struct {
	ContactID    string     `json:"contactId"`
	DeviceID     string     `json:"deviceId"`
	Name         string     `json:"name"`
	PhoneNumber  string     `json:"phoneNumber"`
	Relationship string     `json:"relationship,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

type ContactListResource struct {
	Members []*ContactResource `json:"members"`
}

func NewContact(m *model.TrustedContact) (out *ContactResource) {
	out = &ContactResource{
		ContactID:    m.ContactID,
		DeviceID:     m.DeviceID,
		Name:         m.Name,
		PhoneNumber:  m.PhoneNumber,
		Relationship: m.Relationship,
	}

	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}

	return // out
}

func NewContactList(m []model.TrustedContact) (out *ContactListResource) {
	out = &ContactListResource{
		Members: make([]*ContactResource, 0),
	}

	for i := range m {
		out.Members = append(out.Members, NewContact(&m[i]))
	}

	// Default sort by name
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].Name < out.Members[j].Name
	})

	return // out
}

func ValidateContact(deviceID string, r *ContactResource) (m *model.TrustedContact, err error) {
	if r.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if r.PhoneNumber == "" {
		return nil, fmt.Errorf("phoneNumber is required")
	}

	m = &model.TrustedContact{
		DeviceID:     deviceID,
		Name:         r.Name,
		PhoneNumber:  r.PhoneNumber,
		Relationship: r.Relationship,
	}

	return m, nil
}
