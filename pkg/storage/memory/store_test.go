package memory

import (
	"testing"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

func TestDeviceStoreCreateAndLookup(t *testing.T) {
	s := NewStore()

	device := &model.Device{
		DeviceID:    "dev-1",
		DeviceName:  "Ada's pendant",
		DeviceToken: "token-1",
	}
	if err := s.Devices().Create(device); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if device.Status != model.StatusOffline {
		t.Errorf("expected default status OFFLINE, got %s", device.Status)
	}

	if err := s.Devices().Create(&model.Device{DeviceID: "dev-1"}); err != storage.ErrConflict {
		t.Errorf("expected ErrConflict on duplicate create, got %v", err)
	}

	found, err := s.Devices().FindByToken("token-1")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if found.DeviceID != "dev-1" {
		t.Errorf("unexpected device: %s", found.DeviceID)
	}

	if _, err := s.Devices().FindByToken("nope"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown token, got %v", err)
	}
	if _, err := s.Devices().FindByID("nope"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown device, got %v", err)
	}
}

func TestDeviceStoreUpdateStatus(t *testing.T) {
	s := NewStore()
	if err := s.Devices().Create(&model.Device{DeviceID: "dev-1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	seenAt := time.Now().Round(time.Second).UTC()
	if err := s.Devices().UpdateStatus("dev-1", model.StatusCritical, seenAt); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	m, err := s.Devices().FindByID("dev-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if m.Status != model.StatusCritical {
		t.Errorf("expected CRITICAL, got %s", m.Status)
	}
	if !m.LastSeen.Equal(seenAt) {
		t.Errorf("expected last seen %v, got %v", seenAt, m.LastSeen)
	}

	if err := s.Devices().UpdateStatus("nope", model.StatusNormal, seenAt); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown device, got %v", err)
	}
}

func TestDeviceStoreUpdateTelemetry(t *testing.T) {
	s := NewStore()
	if err := s.Devices().Create(&model.Device{DeviceID: "dev-1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	battery := 64
	seenAt := time.Now().Round(time.Second).UTC()
	loc := &model.Location{Latitude: 6.5244, Longitude: 3.3792, Timestamp: seenAt}
	if err := s.Devices().UpdateTelemetry("dev-1", loc, &battery, seenAt); err != nil {
		t.Fatalf("UpdateTelemetry failed: %v", err)
	}

	m, err := s.Devices().FindByID("dev-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if m.LastLocation == nil || m.LastLocation.Latitude != 6.5244 {
		t.Errorf("unexpected last location: %+v", m.LastLocation)
	}
	if m.BatteryLevel == nil || *m.BatteryLevel != 64 {
		t.Errorf("unexpected battery level: %v", m.BatteryLevel)
	}

	// A report without battery keeps the last known level.
	if err := s.Devices().UpdateTelemetry("dev-1", loc, nil, seenAt); err != nil {
		t.Fatalf("UpdateTelemetry failed: %v", err)
	}
	m, _ = s.Devices().FindByID("dev-1")
	if m.BatteryLevel == nil || *m.BatteryLevel != 64 {
		t.Errorf("expected battery level to survive nil update, got %v", m.BatteryLevel)
	}
}

func TestPanicStoreLifecycle(t *testing.T) {
	s := NewStore()

	event := &model.PanicEvent{
		ID:          "panic-1",
		DeviceID:    "dev-1",
		TriggeredAt: time.Now().Round(time.Second).UTC(),
	}
	if err := s.Panics().Create(event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.Status != model.PanicStatusActive {
		t.Errorf("expected default status ACTIVE, got %s", event.Status)
	}

	active, err := s.Panics().FindActiveByDeviceID("dev-1")
	if err != nil {
		t.Fatalf("FindActiveByDeviceID failed: %v", err)
	}
	if active.ID != "panic-1" {
		t.Errorf("unexpected active event: %s", active.ID)
	}

	attempts := []model.NotificationAttempt{
		{Recipient: "+2348010000001", Success: true},
		{Recipient: "+2348010000002", Success: false, Error: "provider returned status 500"},
	}
	if err := s.Panics().AppendNotificationLog("panic-1", attempts); err != nil {
		t.Fatalf("AppendNotificationLog failed: %v", err)
	}

	resolvedAt := time.Now().Round(time.Second).UTC()
	if err := s.Panics().Resolve("panic-1", resolvedAt); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	m, err := s.Panics().FindByID("panic-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if m.Status != model.PanicStatusResolved {
		t.Errorf("expected RESOLVED, got %s", m.Status)
	}
	if m.ResolvedAt == nil || !m.ResolvedAt.Equal(resolvedAt) {
		t.Errorf("unexpected resolved at: %v", m.ResolvedAt)
	}
	if len(m.NotificationLog) != 2 {
		t.Errorf("expected 2 notification log entries, got %d", len(m.NotificationLog))
	}

	// The resolved event no longer counts as active.
	if _, err := s.Panics().FindActiveByDeviceID("dev-1"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound after resolve, got %v", err)
	}
}

func TestContactStore(t *testing.T) {
	s := NewStore()

	if err := s.Contacts().Create(&model.TrustedContact{
		ContactID:   "contact-1",
		DeviceID:    "dev-1",
		Name:        "Grace",
		PhoneNumber: "+2348010000001",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Contacts().Create(&model.TrustedContact{
		ContactID:   "contact-2",
		DeviceID:    "dev-2",
		Name:        "Linus",
		PhoneNumber: "+2348010000002",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	contacts, err := s.Contacts().FindByDeviceID("dev-1")
	if err != nil {
		t.Fatalf("FindByDeviceID failed: %v", err)
	}
	if len(contacts) != 1 || contacts[0].ContactID != "contact-1" {
		t.Errorf("unexpected contacts: %+v", contacts)
	}

	if err := s.Contacts().Delete("contact-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Contacts().Delete("contact-1"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOperatorStore(t *testing.T) {
	s := NewStore()

	if err := s.Operators().Create(&model.Operator{
		Email:        "ops@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         "admin",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Operators().Create(&model.Operator{Email: "ops@example.com"}); err != storage.ErrConflict {
		t.Errorf("expected ErrConflict on duplicate operator, got %v", err)
	}

	m, err := s.Operators().FindByEmail("ops@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if m.Role != "admin" {
		t.Errorf("unexpected role: %s", m.Role)
	}

	if _, err := s.Operators().FindByEmail("nope@example.com"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown operator, got %v", err)
	}
}
