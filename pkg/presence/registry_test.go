package presence

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/storage/memory"
)

type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	topic   string
	payload interface{}
}

func (b *recordingBus) Broadcast(topic string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{topic: topic, payload: payload})
}

func (b *recordingBus) recorded() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

func newTestRegistry(t *testing.T) (*Registry, *recordingBus) {
	t.Helper()

	store := memory.NewStore()
	if err := store.Devices().Create(&model.Device{
		DeviceID:   "dev-1",
		DeviceName: "Ada's pendant",
	}); err != nil {
		t.Fatalf("failed to seed device: %v", err)
	}

	bus := &recordingBus{}
	return NewRegistry(store.Devices(), bus), bus
}

func TestSetStatusBroadcasts(t *testing.T) {
	registry, bus := newTestRegistry(t)

	device, err := registry.SetStatus("dev-1", model.StatusNormal)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if device.Status != model.StatusNormal {
		t.Errorf("expected NORMAL, got %s", device.Status)
	}

	events := bus.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(events))
	}
	if events[0].topic != TopicDeviceStatusUpdate {
		t.Errorf("unexpected topic: %s", events[0].topic)
	}
	update, ok := events[0].payload.(StatusUpdate)
	if !ok {
		t.Fatalf("expected StatusUpdate payload, got %T", events[0].payload)
	}
	if update.DeviceID != "dev-1" || update.Status != model.StatusNormal {
		t.Errorf("unexpected payload: %+v", update)
	}
}

func TestSetStatusUnknownDevice(t *testing.T) {
	registry, bus := newTestRegistry(t)

	if _, err := registry.SetStatus("nope", model.StatusNormal); err == nil {
		t.Fatal("expected an error for an unknown device")
	}
	if len(bus.recorded()) != 0 {
		t.Error("expected no broadcast for a failed status update")
	}
}

func TestRecordTelemetry(t *testing.T) {
	registry, bus := newTestRegistry(t)

	battery := 71
	location := model.Location{
		Latitude:  6.5244,
		Longitude: 3.3792,
		Accuracy:  12.5,
		Timestamp: time.Now().Round(time.Second).UTC(),
	}

	device, err := registry.RecordTelemetry("dev-1", location, &battery)
	if err != nil {
		t.Fatalf("RecordTelemetry failed: %v", err)
	}
	if device.LastLocation == nil || device.LastLocation.Latitude != 6.5244 {
		t.Errorf("unexpected last location: %+v", device.LastLocation)
	}
	if device.BatteryLevel == nil || *device.BatteryLevel != 71 {
		t.Errorf("unexpected battery level: %v", device.BatteryLevel)
	}

	events := bus.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(events))
	}
	update, ok := events[0].payload.(LocationUpdate)
	if !ok {
		t.Fatalf("expected LocationUpdate payload, got %T", events[0].payload)
	}
	if update.DeviceName != "Ada's pendant" {
		t.Errorf("unexpected device name: %s", update.DeviceName)
	}
	if update.BatteryLevel == nil || *update.BatteryLevel != 71 {
		t.Errorf("unexpected battery level in broadcast: %v", update.BatteryLevel)
	}
}

func TestRecordTelemetryRejectsNonFiniteCoordinates(t *testing.T) {
	registry, bus := newTestRegistry(t)

	coords := []model.Location{
		{Latitude: math.NaN(), Longitude: 3.3792},
		{Latitude: 6.5244, Longitude: math.Inf(1)},
		{Latitude: math.Inf(-1), Longitude: math.NaN()},
	}

	for _, loc := range coords {
		if _, err := registry.RecordTelemetry("dev-1", loc, nil); err != ErrInvalidCoordinates {
			t.Errorf("expected ErrInvalidCoordinates for %+v, got %v", loc, err)
		}
	}

	if len(bus.recorded()) != 0 {
		t.Error("expected no broadcast for rejected telemetry")
	}

	device, err := registry.Device("dev-1")
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	if device.LastLocation != nil {
		t.Errorf("expected no state change, got location %+v", device.LastLocation)
	}
}

func TestSerializeOrdersWritesPerDevice(t *testing.T) {
	registry, bus := newTestRegistry(t)

	// Many concurrent writers to the same device. Every broadcast must come
	// from a write that actually happened and the final state must be the
	// last writer's.
	var wg sync.WaitGroup
	statuses := []model.DeviceStatus{model.StatusNormal, model.StatusCritical, model.StatusOffline}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := registry.SetStatus("dev-1", statuses[i%len(statuses)]); err != nil {
				t.Errorf("SetStatus failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(bus.recorded()) != 30 {
		t.Errorf("expected 30 broadcasts, got %d", len(bus.recorded()))
	}

	device, err := registry.Device("dev-1")
	if err != nil {
		t.Fatalf("Device failed: %v", err)
	}
	switch device.Status {
	case model.StatusNormal, model.StatusCritical, model.StatusOffline:
	default:
		t.Errorf("unexpected final status: %s", device.Status)
	}
}
