package escalation

import (
	"strings"
	"testing"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
)

func TestAlertMessage(t *testing.T) {
	device := &model.Device{DeviceID: "dev-1", DeviceName: "Ada's pendant"}
	battery := 23
	event := &model.PanicEvent{
		ID:          "panic-1",
		DeviceID:    "dev-1",
		TriggeredAt: time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC),
		Location: &model.Location{
			Latitude:  6.5244,
			Longitude: 3.3792,
		},
		BatteryLevel: &battery,
	}

	msg := alertMessage(device, event)

	if !strings.HasPrefix(msg, "EMERGENCY: Ada's pendant triggered a panic alert") {
		t.Errorf("unexpected message prefix: %s", msg)
	}
	if !strings.Contains(msg, "https://maps.google.com/?q=6.524400,3.379200") {
		t.Errorf("expected a maps link, got %s", msg)
	}
	if !strings.Contains(msg, "Battery: 23%.") {
		t.Errorf("expected the battery level, got %s", msg)
	}
}

func TestAlertMessageWithoutLocation(t *testing.T) {
	device := &model.Device{DeviceID: "dev-1", DeviceName: "Ada's pendant"}
	event := &model.PanicEvent{
		ID:          "panic-1",
		DeviceID:    "dev-1",
		TriggeredAt: time.Now().UTC(),
	}

	msg := alertMessage(device, event)

	if strings.Contains(msg, "maps.google.com") {
		t.Errorf("expected no maps link, got %s", msg)
	}
	if strings.Contains(msg, "Battery") {
		t.Errorf("expected no battery section, got %s", msg)
	}
}
