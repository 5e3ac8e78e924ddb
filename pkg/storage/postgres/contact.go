package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func newContactStore(db *sqlx.DB) *contactStore {
	return &contactStore{
		db: db,
	}
}

type contactStore struct {
	db *sqlx.DB
}

type sqlDataContact struct {
	ContactID    string    `db:"contact_id"`
	DeviceID     string    `db:"device_id"`
	Name         string    `db:"name"`
	PhoneNumber  string    `db:"phone_number"`
	Relationship string    `db:"relationship"`
	CreatedAt    time.Time `db:"created_at"`
}

func (d *sqlDataContact) Model() *model.TrustedContact {
	return &model.TrustedContact{
		ContactID:    d.ContactID,
		DeviceID:     d.DeviceID,
		Name:         d.Name,
		PhoneNumber:  d.PhoneNumber,
		Relationship: d.Relationship,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *contactStore) FindByDeviceID(deviceID string) ([]model.TrustedContact, error) {
	rows := make([]sqlDataContact, 0)
	models := make([]model.TrustedContact, 0)

	query := "SELECT * FROM trusted_contacts WHERE device_id = $1 ORDER BY created_at"
	if err := s.db.Select(&rows, query, deviceID); err != nil {
		return nil, errors.Wrap(err, "failed to fetch trusted contacts")
	}

	for _, row := range rows {
		models = append(models, *row.Model())
	}

	return models, nil
}

func (s *contactStore) Create(m *model.TrustedContact) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().Round(time.Second).UTC()
	}

	d := sqlDataContact{
		ContactID:    m.ContactID,
		DeviceID:     m.DeviceID,
		Name:         m.Name,
		PhoneNumber:  m.PhoneNumber,
		Relationship: m.Relationship,
		CreatedAt:    m.CreatedAt,
	}

	query := `INSERT INTO trusted_contacts (contact_id, device_id, name,
		phone_number, relationship, created_at)
		VALUES (:contact_id, :device_id, :name, :phone_number, :relationship, :created_at)`
	if _, err := s.db.NamedExec(query, &d); err != nil {
		if conflict := translateUniqueViolation(err); conflict == storage.ErrConflict {
			return conflict
		}
		return errors.Wrap(err, "failed to create trusted contact")
	}

	return nil
}

func (s *contactStore) Delete(contactID string) error {
	res, err := s.db.Exec("DELETE FROM trusted_contacts WHERE contact_id = $1", contactID)
	if err != nil {
		return errors.Wrap(err, "failed to delete trusted contact")
	}

	return ensureRowAffected(res)
}

var _ storage.ContactStore = (*contactStore)(nil)
