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

func newPanicStore(db *sqlx.DB) *panicStore {
	return &panicStore{
		db: db,
	}
}

type panicStore struct {
	db *sqlx.DB
}

type sqlDataPanic struct {
	ID              string         `db:"id"`
	DeviceID        string         `db:"device_id"`
	Location        sql.NullString `db:"location"`
	BatteryLevel    sql.NullInt64  `db:"battery_level"`
	TriggeredAt     time.Time      `db:"triggered_at"`
	Status          string         `db:"status"`
	ResolvedAt      sql.NullTime   `db:"resolved_at"`
	NotificationLog sql.NullString `db:"notification_log"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (d *sqlDataPanic) Scan(m *model.PanicEvent) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.ID = m.ID
	d.DeviceID = m.DeviceID
	if m.Location != nil {
		data, err := json.Marshal(m.Location)
		if err != nil {
			return errors.Wrap(err, "failed to marshal panic location")
		}
		d.Location = sql.NullString{String: string(data), Valid: true}
	}
	if m.BatteryLevel != nil {
		d.BatteryLevel = sql.NullInt64{Int64: int64(*m.BatteryLevel), Valid: true}
	}
	d.TriggeredAt = m.TriggeredAt
	d.Status = string(m.Status)
	if m.ResolvedAt != nil {
		d.ResolvedAt = sql.NullTime{Time: *m.ResolvedAt, Valid: true}
	}
	if m.NotificationLog != nil {
		data, err := json.Marshal(m.NotificationLog)
		if err != nil {
			return errors.Wrap(err, "failed to marshal notification log")
		}
		d.NotificationLog = sql.NullString{String: string(data), Valid: true}
	}
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataPanic) Model() (*model.PanicEvent, error) {
	m := &model.PanicEvent{
		ID:          d.ID,
		DeviceID:    d.DeviceID,
		TriggeredAt: d.TriggeredAt,
		Status:      model.PanicStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	if d.Location.Valid {
		loc := &model.Location{}
		if err := json.Unmarshal([]byte(d.Location.String), loc); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal panic location")
		}
		m.Location = loc
	}
	if d.BatteryLevel.Valid {
		level := int(d.BatteryLevel.Int64)
		m.BatteryLevel = &level
	}
	if d.ResolvedAt.Valid {
		at := d.ResolvedAt.Time
		m.ResolvedAt = &at
	}
	if d.NotificationLog.Valid {
		log := make([]model.NotificationAttempt, 0)
		if err := json.Unmarshal([]byte(d.NotificationLog.String), &log); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal notification log")
		}
		m.NotificationLog = log
	}

	return m, nil
}

func (s *panicStore) FetchAll() ([]model.PanicEvent, error) {
	rows := make([]sqlDataPanic, 0)
	models := make([]model.PanicEvent, 0)

	query := "SELECT * FROM panic_events ORDER BY triggered_at"
	if err := s.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all panic events")
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

func (s *panicStore) FindByID(id string) (*model.PanicEvent, error) {
	d := sqlDataPanic{}

	query := "SELECT * FROM panic_events WHERE id = $1"
	if err := s.db.Get(&d, query, id); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find panic event")
	}

	return d.Model()
}

func (s *panicStore) FindActiveByDeviceID(deviceID string) (*model.PanicEvent, error) {
	d := sqlDataPanic{}

	query := `SELECT * FROM panic_events WHERE device_id = $1 AND status = $2
		ORDER BY triggered_at DESC LIMIT 1`
	if err := s.db.Get(&d, query, deviceID, string(model.PanicStatusActive)); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find active panic event")
	}

	return d.Model()
}

func (s *panicStore) Create(m *model.PanicEvent) error {
	if m.Status == "" {
		m.Status = model.PanicStatusActive
	}

	d := sqlDataPanic{}
	if err := d.Scan(m); err != nil {
		return err
	}

	query := `INSERT INTO panic_events (id, device_id, location, battery_level,
		triggered_at, status, resolved_at, notification_log, created_at, updated_at)
		VALUES (:id, :device_id, :location, :battery_level,
		:triggered_at, :status, :resolved_at, :notification_log, :created_at, :updated_at)`
	if _, err := s.db.NamedExec(query, &d); err != nil {
		return errors.Wrap(err, "failed to create panic event")
	}

	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt

	return nil
}

func (s *panicStore) AppendNotificationLog(id string, attempts []model.NotificationAttempt) error {
	data, err := json.Marshal(attempts)
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification log")
	}

	query := `UPDATE panic_events
		SET notification_log = COALESCE(notification_log, '[]'::jsonb) || $1::jsonb,
		updated_at = $2 WHERE id = $3`
	res, err := s.db.Exec(query, string(data), time.Now().Round(time.Second).UTC(), id)
	if err != nil {
		return errors.Wrap(err, "failed to append notification log")
	}

	return ensureRowAffected(res)
}

func (s *panicStore) Resolve(id string, at time.Time) error {
	query := `UPDATE panic_events SET status = $1, resolved_at = $2, updated_at = $3
		WHERE id = $4`
	res, err := s.db.Exec(query, string(model.PanicStatusResolved), at,
		time.Now().Round(time.Second).UTC(), id)
	if err != nil {
		return errors.Wrap(err, "failed to resolve panic event")
	}

	return ensureRowAffected(res)
}
