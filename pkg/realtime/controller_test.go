package realtime

import (
	"context"
	"math"
	"testing"

	"github.com/Procodx/familyGuardian/pkg/escalation"
	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/notify"
	"github.com/Procodx/familyGuardian/pkg/presence"
	"github.com/Procodx/familyGuardian/pkg/storage"
	"github.com/Procodx/familyGuardian/pkg/storage/memory"
)

type controllerFixture struct {
	store    storage.Interface
	hub      *Hub
	workflow *escalation.Workflow
	ctrl     *Controller
}

type dropNotifier struct{}

func (dropNotifier) Send(_ context.Context, phoneNumber, _ string) notify.Result {
	return notify.Result{Recipient: phoneNumber, Success: true}
}

func newControllerFixture(t *testing.T, cfg Config) *controllerFixture {
	t.Helper()

	store := memory.NewStore()
	if err := store.Devices().Create(&model.Device{
		DeviceID:    "dev-1",
		DeviceName:  "Ada's pendant",
		DeviceToken: "token-1",
	}); err != nil {
		t.Fatalf("failed to seed device: %v", err)
	}

	hub := NewHub()
	bus := NewBus(hub, nil)
	registry := presence.NewRegistry(store.Devices(), bus)
	directory := escalation.NewStoreDirectory(store.Contacts())
	workflow := escalation.NewWorkflow(store, registry, directory, dropNotifier{}, bus, escalation.Config{})

	return &controllerFixture{
		store:    store,
		hub:      hub,
		workflow: workflow,
		ctrl:     NewController(store, registry, workflow, hub, cfg),
	}
}

func (f *controllerFixture) newChannel() *Channel {
	return newTestChannel(model.SessionKindDevice, 8)
}

func TestRegisterSessionDeviceCredential(t *testing.T) {
	f := newControllerFixture(t, Config{})
	cc := f.newChannel()

	session, _, err := f.ctrl.RegisterSession(cc, "device:token-1")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}
	if session.Kind != model.SessionKindDevice {
		t.Errorf("expected a device session, got %s", session.Kind)
	}
	if session.DeviceID != "dev-1" {
		t.Errorf("unexpected device id: %s", session.DeviceID)
	}
	if session.ID == 0 {
		t.Error("expected a session id to be assigned")
	}

	// A connected device surfaces as NORMAL.
	device, _ := f.store.Devices().FindByID("dev-1")
	if device.Status != model.StatusNormal {
		t.Errorf("expected NORMAL, got %s", device.Status)
	}
}

func TestRegisterSessionRestoresCritical(t *testing.T) {
	f := newControllerFixture(t, Config{})

	if err := f.store.Panics().Create(&model.PanicEvent{
		ID:       "panic-1",
		DeviceID: "dev-1",
		Status:   model.PanicStatusActive,
	}); err != nil {
		t.Fatalf("failed to seed panic event: %v", err)
	}

	cc := f.newChannel()
	if _, _, err := f.ctrl.RegisterSession(cc, "device:token-1"); err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	// Reconnecting with an open panic event resurfaces as CRITICAL.
	device, _ := f.store.Devices().FindByID("dev-1")
	if device.Status != model.StatusCritical {
		t.Errorf("expected CRITICAL, got %s", device.Status)
	}
}

func TestRegisterSessionRejectsUnknownToken(t *testing.T) {
	f := newControllerFixture(t, Config{})

	_, _, err := f.ctrl.RegisterSession(f.newChannel(), "device:nope")
	if err == nil {
		t.Fatal("expected a registration error")
	}
	if !IsRegistrationError(err) {
		t.Fatalf("expected a RegistrationError, got %T", err)
	}
	if reason := err.(*RegistrationError).Reason; reason != ErrReasonNoSuchDevice {
		t.Errorf("unexpected reason: %s", reason)
	}
	if got := len(f.hub.Sessions()); got != 0 {
		t.Errorf("expected no session after a rejected handshake, got %d", got)
	}
}

func TestRegisterSessionRejectsMalformedCredential(t *testing.T) {
	f := newControllerFixture(t, Config{})

	_, _, err := f.ctrl.RegisterSession(f.newChannel(), "token-1")
	if !IsRegistrationError(err) {
		t.Fatalf("expected a RegistrationError, got %v", err)
	}
	if reason := err.(*RegistrationError).Reason; reason != ErrReasonNotAuthorized {
		t.Errorf("unexpected reason: %s", reason)
	}
}

func TestRegisterSessionOperatorCredential(t *testing.T) {
	f := newControllerFixture(t, Config{})

	session, _, err := f.ctrl.RegisterSession(f.newChannel(), "operator:some-token")
	if err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}
	if session.Kind != model.SessionKindOperator {
		t.Errorf("expected an operator session, got %s", session.Kind)
	}

	// An operator without any token is rejected.
	_, _, err = f.ctrl.RegisterSession(f.newChannel(), "operator:")
	if !IsRegistrationError(err) {
		t.Fatalf("expected a RegistrationError, got %v", err)
	}
}

func TestUnregisterSessionMarksDeviceOffline(t *testing.T) {
	f := newControllerFixture(t, Config{OfflineOverridesCritical: true})
	cc := f.newChannel()

	if _, _, err := f.ctrl.RegisterSession(cc, "device:token-1"); err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	f.ctrl.UnregisterSession(cc)

	device, _ := f.store.Devices().FindByID("dev-1")
	if device.Status != model.StatusOffline {
		t.Errorf("expected OFFLINE, got %s", device.Status)
	}
	if got := len(f.hub.Sessions()); got != 0 {
		t.Errorf("expected the session to be removed, got %d", got)
	}
}

func TestUnregisterSessionKeepsCriticalWhenConfigured(t *testing.T) {
	f := newControllerFixture(t, Config{OfflineOverridesCritical: false})
	cc := f.newChannel()

	if err := f.store.Panics().Create(&model.PanicEvent{
		ID:       "panic-1",
		DeviceID: "dev-1",
		Status:   model.PanicStatusActive,
	}); err != nil {
		t.Fatalf("failed to seed panic event: %v", err)
	}

	if _, _, err := f.ctrl.RegisterSession(cc, "device:token-1"); err != nil {
		t.Fatalf("RegisterSession failed: %v", err)
	}

	f.ctrl.UnregisterSession(cc)

	device, _ := f.store.Devices().FindByID("dev-1")
	if device.Status != model.StatusCritical {
		t.Errorf("expected CRITICAL to survive the disconnect, got %s", device.Status)
	}
}

func deviceSession() model.Session {
	return model.Session{
		ID:       1,
		Kind:     model.SessionKindDevice,
		KindName: model.SessionKindDevice.String(),
		DeviceID: "dev-1",
	}
}

func TestHandlePublishLocationUpdate(t *testing.T) {
	f := newControllerFixture(t, Config{})

	args := map[string]interface{}{
		"latitude":     6.5244,
		"longitude":    3.3792,
		"accuracy":     10.0,
		"timestamp":    float64(1700000000000),
		"batteryLevel": 42.0,
	}

	publicationID, err := f.ctrl.HandlePublish(deviceSession(), "location_update", args)
	if err != nil {
		t.Fatalf("HandlePublish failed: %v", err)
	}
	if publicationID == "" {
		t.Error("expected a publication id")
	}

	device, _ := f.store.Devices().FindByID("dev-1")
	if device.LastLocation == nil || device.LastLocation.Longitude != 3.3792 {
		t.Errorf("unexpected last location: %+v", device.LastLocation)
	}
	if device.BatteryLevel == nil || *device.BatteryLevel != 42 {
		t.Errorf("unexpected battery level: %v", device.BatteryLevel)
	}
}

func TestHandlePublishInvalidCoordinates(t *testing.T) {
	f := newControllerFixture(t, Config{})

	args := map[string]interface{}{
		"latitude":  math.NaN(),
		"longitude": 3.3792,
	}

	_, err := f.ctrl.HandlePublish(deviceSession(), "location_update", args)
	if err == nil {
		t.Fatal("expected an error for non-finite coordinates")
	}
	if publishErrorReason(err) != ErrReasonInvalidArgument {
		t.Errorf("expected ERR_INVALID_ARGUMENT, got %s", publishErrorReason(err))
	}

	device, _ := f.store.Devices().FindByID("dev-1")
	if device.LastLocation != nil {
		t.Error("expected the report to be dropped without a state change")
	}
}

func TestHandlePublishPanicAlert(t *testing.T) {
	f := newControllerFixture(t, Config{})

	args := map[string]interface{}{
		"latitude":     6.5244,
		"longitude":    3.3792,
		"batteryLevel": 9.0,
	}

	eventID, err := f.ctrl.HandlePublish(deviceSession(), "panic_alert", args)
	if err != nil {
		t.Fatalf("HandlePublish failed: %v", err)
	}
	f.workflow.Wait()

	stored, err := f.store.Panics().FindByID(eventID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.Location == nil || stored.Location.Latitude != 6.5244 {
		t.Errorf("unexpected event location: %+v", stored.Location)
	}

	device, _ := f.store.Devices().FindByID("dev-1")
	if device.Status != model.StatusCritical {
		t.Errorf("expected CRITICAL, got %s", device.Status)
	}
}

func TestHandlePublishPanicAlertWithInvalidCoordinates(t *testing.T) {
	f := newControllerFixture(t, Config{})

	args := map[string]interface{}{
		"latitude":  math.Inf(1),
		"longitude": 3.3792,
	}

	// A panic with unusable coordinates still escalates, without a location.
	eventID, err := f.ctrl.HandlePublish(deviceSession(), "panic_alert", args)
	if err != nil {
		t.Fatalf("HandlePublish failed: %v", err)
	}
	f.workflow.Wait()

	stored, err := f.store.Panics().FindByID(eventID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.Location != nil {
		t.Errorf("expected no location on the event, got %+v", stored.Location)
	}
	if stored.Status != model.PanicStatusActive {
		t.Errorf("expected ACTIVE, got %s", stored.Status)
	}
}

func TestHandlePublishUnknownTopic(t *testing.T) {
	f := newControllerFixture(t, Config{})

	_, err := f.ctrl.HandlePublish(deviceSession(), "weather_report", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown topic")
	}
	if publishErrorReason(err) != ErrReasonNoSuchTopic {
		t.Errorf("expected ERR_NO_SUCH_TOPIC, got %s", publishErrorReason(err))
	}
}
