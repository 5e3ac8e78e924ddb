package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func newDeviceStore(db *sqlx.DB) *deviceStore {
	return &deviceStore{
		db: db,
	}
}

type deviceStore struct {
	db *sqlx.DB
}

type sqlDataDevice struct {
	DeviceID     string         `db:"device_id"`
	DeviceName   string         `db:"device_name"`
	DeviceToken  string         `db:"device_token"`
	Status       string         `db:"status"`
	LastLocation sql.NullString `db:"last_location"`
	BatteryLevel sql.NullInt64  `db:"battery_level"`
	LastSeen     time.Time      `db:"last_seen"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (d *sqlDataDevice) Scan(m *model.Device) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.DeviceID = m.DeviceID
	d.DeviceName = m.DeviceName
	d.DeviceToken = m.DeviceToken
	d.Status = string(m.Status)
	if m.LastLocation != nil {
		data, err := json.Marshal(m.LastLocation)
		if err != nil {
			return errors.Wrap(err, "failed to marshal last location")
		}
		d.LastLocation = sql.NullString{String: string(data), Valid: true}
	}
	if m.BatteryLevel != nil {
		d.BatteryLevel = sql.NullInt64{Int64: int64(*m.BatteryLevel), Valid: true}
	}
	d.LastSeen = m.LastSeen
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataDevice) Model() (*model.Device, error) {
	m := &model.Device{
		DeviceID:    d.DeviceID,
		DeviceName:  d.DeviceName,
		DeviceToken: d.DeviceToken,
		Status:      model.DeviceStatus(d.Status),
		LastSeen:    d.LastSeen,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	if d.LastLocation.Valid {
		loc := &model.Location{}
		if err := json.Unmarshal([]byte(d.LastLocation.String), loc); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal last location")
		}
		m.LastLocation = loc
	}
	if d.BatteryLevel.Valid {
		level := int(d.BatteryLevel.Int64)
		m.BatteryLevel = &level
	}

	return m, nil
}

func (s *deviceStore) FetchAll() ([]model.Device, error) {
	rows := make([]sqlDataDevice, 0)
	models := make([]model.Device, 0)

	query := "SELECT * FROM devices ORDER BY device_id"
	if err := s.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all devices")
	}

	for _, row := range rows {
		m, err := row.Model()
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}

	return models, nil
}

func (s *deviceStore) FindByID(deviceID string) (*model.Device, error) {
	return findDeviceBy(s.db, "device_id", deviceID)
}

func (s *deviceStore) FindByToken(token string) (*model.Device, error) {
	return findDeviceBy(s.db, "device_token", token)
}

func (s *deviceStore) Create(m *model.Device) error {
	if m.Status == "" {
		m.Status = model.StatusOffline
	}
	if m.LastSeen.IsZero() {
		m.LastSeen = time.Now().Round(time.Second).UTC()
	}

	d := sqlDataDevice{}
	if err := d.Scan(m); err != nil {
		return err
	}

	query := `INSERT INTO devices (device_id, device_name, device_token, status,
		last_location, battery_level, last_seen, created_at, updated_at)
		VALUES (:device_id, :device_name, :device_token, :status,
		:last_location, :battery_level, :last_seen, :created_at, :updated_at)`
	if _, err := s.db.NamedExec(query, &d); err != nil {
		if conflict := translateUniqueViolation(err); conflict == storage.ErrConflict {
			return conflict
		}
		return errors.Wrap(err, "failed to create device")
	}

	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt

	return nil
}

func (s *deviceStore) UpdateStatus(deviceID string, status model.DeviceStatus, seenAt time.Time) error {
	query := `UPDATE devices SET status = $1, last_seen = $2, updated_at = $3
		WHERE device_id = $4`
	res, err := s.db.Exec(query, string(status), seenAt,
		time.Now().Round(time.Second).UTC(), deviceID)
	if err != nil {
		return errors.Wrap(err, "failed to update device status")
	}

	return ensureRowAffected(res)
}

func (s *deviceStore) UpdateTelemetry(deviceID string, location *model.Location, batteryLevel *int, seenAt time.Time) error {
	locData, err := json.Marshal(location)
	if err != nil {
		return errors.Wrap(err, "failed to marshal location")
	}

	var battery sql.NullInt64
	if batteryLevel != nil {
		battery = sql.NullInt64{Int64: int64(*batteryLevel), Valid: true}
	}

	query := `UPDATE devices SET last_location = $1,
		battery_level = COALESCE($2, battery_level), last_seen = $3, updated_at = $4
		WHERE device_id = $5`
	res, err := s.db.Exec(query, string(locData), battery, seenAt,
		time.Now().Round(time.Second).UTC(), deviceID)
	if err != nil {
		return errors.Wrap(err, "failed to update device telemetry")
	}

	return ensureRowAffected(res)
}

func findDeviceBy(db *sqlx.DB, column, value string) (*model.Device, error) {
	d := sqlDataDevice{}

	query := "SELECT * FROM devices WHERE " + column + " = $1"
	if err := db.Get(&d, query, value); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find device")
	}

	return d.Model()
}

func ensureRowAffected(res sql.Result) error {
	count, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if count == 0 {
		return storage.ErrNotFound
	}
	return nil
}
