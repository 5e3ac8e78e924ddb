package model

import "time"

// Operator is a monitoring-dashboard account. The initial admin account is
// seeded from the environment at engine start.
type Operator struct {
	Email        string
	PasswordHash string
	Role         string

	CreatedAt time.Time
}
