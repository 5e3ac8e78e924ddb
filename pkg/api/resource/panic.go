package resource

import (
	"sort"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

type PanicResource struct {
	PanicID         string                      `json:"panicId"`
	DeviceID        string                      `json:"deviceId"`
	Status          string                      `json:"status"`
	Location        *model.Location             `json:"location,omitempty"`
	BatteryLevel    *int                        `json:"batteryLevel,omitempty"`
	TriggeredAt     time.Time                   `json:"triggeredAt"`
	ResolvedAt      *time.Time                  `json:"resolvedAt,omitempty"`
	NotificationLog []model.NotificationAttempt `json:"notificationLog"`
}

type PanicListResource struct {
	Members []*PanicResource `json:"members"`
}

// AcknowledgeResource confirms the resolution of a panic event.
type AcknowledgeResource struct {
	Status   string `json:"status"`
	PanicID  string `json:"panicId"`
	DeviceID string `json:"deviceId"`
}

func NewPanic(m *model.PanicEvent) (out *PanicResource) {
	out = &PanicResource{
		PanicID:      m.ID,
		DeviceID:     m.DeviceID,
		Status:       string(m.Status),
		Location:     m.Location,
		BatteryLevel: m.BatteryLevel,
		TriggeredAt:  m.TriggeredAt.Round(time.Second),
		ResolvedAt:   m.ResolvedAt,
	}

	out.NotificationLog = make([]model.NotificationAttempt, 0, len(m.NotificationLog))
	out.NotificationLog = append(out.NotificationLog, m.NotificationLog...)

	return // out
}

func NewPanicList(m []model.PanicEvent) (out *PanicListResource) {
	out = &PanicListResource{
		Members: make([]*PanicResource, 0),
	}

	for i := range m {
		out.Members = append(out.Members, NewPanic(&m[i]))
	}

	// Newest first
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].TriggeredAt.After(out.Members[j].TriggeredAt)
	})

	return // out
}
