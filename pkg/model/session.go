package model

import "time"

// SessionKind classifies an authenticated realtime connection.
type SessionKind int

const (
	SessionKindDevice SessionKind = iota
	SessionKindOperator
)

func (k SessionKind) String() string {
	switch k {
	case SessionKindDevice:
		return "DEVICE"
	case SessionKindOperator:
		return "OPERATOR"
	}
	return "UNKNOWN"
}

// Session describes one live realtime connection. Sessions are ephemeral and
// exist only in the engine's session table for the connection's lifetime; they
// are never persisted.
type Session struct {
	ID            int32       `json:"id"`
	Kind          SessionKind `json:"-"`
	KindName      string      `json:"kind"`
	DeviceID      string      `json:"device_id,omitempty"`
	ConnectedAt   time.Time   `json:"connected_at"`
	LastMessageAt time.Time   `json:"last_message_at"`
}
