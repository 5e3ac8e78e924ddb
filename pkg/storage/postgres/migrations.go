package postgres

import migrate "github.com/rubenv/sql-migrate"

// Migrations holds the schema migration plan applied by `guardian migrate sql`.
var Migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_create_devices",
			Up: []string{`CREATE TABLE IF NOT EXISTS devices (
				device_id     TEXT PRIMARY KEY,
				device_name   TEXT NOT NULL,
				device_token  TEXT NOT NULL UNIQUE,
				status        TEXT NOT NULL DEFAULT 'OFFLINE',
				last_location JSONB,
				battery_level INTEGER,
				last_seen     TIMESTAMPTZ NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL,
				updated_at    TIMESTAMPTZ NOT NULL
			)`},
			Down: []string{"DROP TABLE devices"},
		},
		{
			Id: "2_create_panic_events",
			Up: []string{`CREATE TABLE IF NOT EXISTS panic_events (
				id               TEXT PRIMARY KEY,
				device_id        TEXT NOT NULL REFERENCES devices (device_id),
				location         JSONB,
				battery_level    INTEGER,
				triggered_at     TIMESTAMPTZ NOT NULL,
				status           TEXT NOT NULL DEFAULT 'ACTIVE',
				resolved_at      TIMESTAMPTZ,
				notification_log JSONB,
				created_at       TIMESTAMPTZ NOT NULL,
				updated_at       TIMESTAMPTZ NOT NULL
			)`,
				`CREATE INDEX idx_panic_events_device_status
				ON panic_events (device_id, status)`},
			Down: []string{"DROP TABLE panic_events"},
		},
		{
			Id: "3_create_trusted_contacts",
			Up: []string{`CREATE TABLE IF NOT EXISTS trusted_contacts (
				contact_id   TEXT PRIMARY KEY,
				device_id    TEXT NOT NULL REFERENCES devices (device_id),
				name         TEXT NOT NULL,
				phone_number TEXT NOT NULL,
				relationship TEXT NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL
			)`,
				`CREATE INDEX idx_trusted_contacts_device
				ON trusted_contacts (device_id)`},
			Down: []string{"DROP TABLE trusted_contacts"},
		},
		{
			Id: "4_create_operators",
			Up: []string{`CREATE TABLE IF NOT EXISTS operators (
				email         TEXT PRIMARY KEY,
				password_hash TEXT NOT NULL,
				role          TEXT NOT NULL DEFAULT 'admin',
				created_at    TIMESTAMPTZ NOT NULL
			)`},
			Down: []string{"DROP TABLE operators"},
		},
	},
}
