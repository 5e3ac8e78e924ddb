package resource

import (
	"fmt"
	"sort"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

type DeviceResource struct {
	DeviceID     string          `json:"deviceId"`
	DeviceName   string          `json:"deviceName"`
	DeviceToken  string          `json:"deviceToken,omitempty"`
	Status       string          `json:"status"`
	LastLocation *model.Location `json:"lastLocation,omitempty"`
	BatteryLevel *int            `json:"batteryLevel,omitempty"`
	LastSeen     *time.Time      `json:"lastSeen,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

type DeviceListResource struct {
	Members []*DeviceResource `json:"members"`
}

// NewDevice converts the model into its API representation. The device token
// is only disclosed on registration, never on reads.
func NewDevice(m *model.Device, withToken bool) (out *DeviceResource) {
	out = &DeviceResource{
		DeviceID:     m.DeviceID,
		DeviceName:   m.DeviceName,
		Status:       string(m.Status),
		LastLocation: m.LastLocation,
		BatteryLevel: m.BatteryLevel,
	}

	if withToken {
		out.DeviceToken = m.DeviceToken
	}

	if !m.LastSeen.IsZero() {
		out.LastSeen = &time.Time{}
		*out.LastSeen = m.LastSeen.Round(time.Second)
	}
	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}
	if !m.UpdatedAt.IsZero() {
		out.UpdatedAt = &time.Time{}
		*out.UpdatedAt = m.UpdatedAt.Round(time.Second)
	}

	return // out
}

func NewDeviceList(m []model.Device) (out *DeviceListResource) {
	out = &DeviceListResource{
		Members: make([]*DeviceResource, 0),
	}

	for i := range m {
		out.Members = append(out.Members, NewDevice(&m[i], false))
	}

	// Default sort by device ID
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].DeviceID < out.Members[j].DeviceID
	})

	return // out
}

func ValidateDevice(r *DeviceResource) (m *model.Device, err error) {
	if r.DeviceID == "" {
		return nil, fmt.Errorf("deviceId is required")
	}
	if r.DeviceName == "" {
		return nil, fmt.Errorf("deviceName is required")
	}

	m = &model.Device{
		DeviceID:   r.DeviceID,
		DeviceName: r.DeviceName,
	}

	return m, nil
}
