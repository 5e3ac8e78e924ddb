package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/notify"
	"github.com/Procodx/familyGuardian/pkg/presence"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

// Broadcast topics emitted by the workflow.
const (
	TopicDevicePanicTriggered = "device_panic_triggered"
	TopicPanicResolved        = "panic_resolved"
)

const defaultDispatchTimeout = 5 * time.Second

// Broadcaster delivers an event payload to all connected operator sessions.
type Broadcaster interface {
	Broadcast(topic string, payload interface{})
}

// PanicTriggered is the payload of a device_panic_triggered broadcast. It is
// sent to operators regardless of the notification fan-out outcome.
type PanicTriggered struct {
	PanicID      string          `json:"panicId"`
	DeviceID     string          `json:"deviceId"`
	DeviceName   string          `json:"deviceName"`
	Timestamp    time.Time       `json:"timestamp"`
	Location     *model.Location `json:"location,omitempty"`
	BatteryLevel *int            `json:"batteryLevel,omitempty"`
}

// PanicResolved is the payload of a panic_resolved broadcast.
type PanicResolved struct {
	PanicID  string             `json:"panicId"`
	DeviceID string             `json:"deviceId"`
	Status   model.DeviceStatus `json:"status"`
}

// Config carries the escalation settings that come from the environment.
type Config struct {
	// FallbackNumber, when set, is appended to the recipient list of every
	// escalation in addition to the device's trusted contacts.
	FallbackNumber string
	// DispatchTimeout bounds one recipient dispatch so a stuck provider call
	// cannot stall the notification join. Defaults to 5s.
	DispatchTimeout time.Duration
}

// Workflow drives the panic state machine: trigger, multi-channel
// notification fan-out and acknowledgment.
type Workflow struct {
	store     storage.Interface
	registry  *presence.Registry
	directory Directory
	notifier  notify.Notifier
	bus       Broadcaster
	cfg       Config

	wg sync.WaitGroup
}

// NewWorkflow creates the escalation workflow.
func NewWorkflow(store storage.Interface, registry *presence.Registry, directory Directory, notifier notify.Notifier, bus Broadcaster, cfg Config) *Workflow {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = defaultDispatchTimeout
	}
	return &Workflow{
		store:     store,
		registry:  registry,
		directory: directory,
		notifier:  notifier,
		bus:       bus,
		cfg:       cfg,
	}
}

// Trigger moves a device into the CRITICAL state. The durable panic event
// write happens first and is fatal on failure; the status flip and the
// operator broadcast follow inside the device's critical section. The
// notification fan-out runs in the background and never gates the broadcast;
// it completes even if the triggering device disconnects.
func (w *Workflow) Trigger(deviceID string, location *model.Location, batteryLevel *int) (*model.PanicEvent, error) {
	var (
		device *model.Device
		event  *model.PanicEvent
		reused bool
	)

	err := w.registry.Serialize(deviceID, func() error {
		var err error
		device, err = w.store.Devices().FindByID(deviceID)
		if err != nil {
			return err
		}

		// A device has at most one ACTIVE panic event. Re-triggering while
		// one is open re-broadcasts the alert but does not escalate again.
		existing, err := w.store.Panics().FindActiveByDeviceID(deviceID)
		if err == nil {
			event = existing
			reused = true
			w.broadcastTriggered(device, event)
			return nil
		}
		if err != storage.ErrNotFound {
			return errors.Wrap(err, "failed to check for active panic event")
		}

		event = &model.PanicEvent{
			ID:           uuid.NewString(),
			DeviceID:     deviceID,
			Location:     location,
			BatteryLevel: batteryLevel,
			TriggeredAt:  time.Now().Round(time.Second).UTC(),
			Status:       model.PanicStatusActive,
		}
		if err := w.store.Panics().Create(event); err != nil {
			// No degraded "alert without a record" path: a failed durable
			// write fails the whole trigger.
			return errors.Wrap(err, "failed to persist panic event")
		}

		if _, err := w.registry.ApplyStatus(deviceID, model.StatusCritical); err != nil {
			log.Errorf("escalation failed to set device '%s' critical: %v", deviceID, err)
		}

		w.broadcastTriggered(device, event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !reused {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.escalate(device, event)
		}()
	}

	return event, nil
}

func (w *Workflow) broadcastTriggered(device *model.Device, event *model.PanicEvent) {
	w.bus.Broadcast(TopicDevicePanicTriggered, PanicTriggered{
		PanicID:      event.ID,
		DeviceID:     device.DeviceID,
		DeviceName:   device.DeviceName,
		Timestamp:    event.TriggeredAt,
		Location:     event.Location,
		BatteryLevel: event.BatteryLevel,
	})

	log.WithFields(log.Fields{
		"panic_id":  event.ID,
		"device_id": device.DeviceID,
	}).Warn("panic alert broadcast to operators")
}

// escalate looks up the trusted contacts, dispatches to every recipient
// concurrently and appends the complete outcome log to the panic event in a
// single write after all dispatches settled. Every failure along the way is
// logged and reduced to a log entry; nothing propagates.
func (w *Workflow) escalate(device *model.Device, event *model.PanicEvent) {
	contacts, err := w.directory.FindContactsByDevice(event.DeviceID)
	if err != nil {
		log.Errorf("escalation failed to look up trusted contacts for '%s': %v", event.DeviceID, err)
		contacts = nil
	}

	recipients := make([]string, 0, len(contacts)+1)
	for _, c := range contacts {
		recipients = append(recipients, c.PhoneNumber)
	}
	if w.cfg.FallbackNumber != "" {
		recipients = append(recipients, w.cfg.FallbackNumber)
	}

	message := alertMessage(device, event)

	results := make([]model.NotificationAttempt, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), w.cfg.DispatchTimeout)
			defer cancel()

			res := w.notifier.Send(ctx, recipient, message)
			results[i] = model.NotificationAttempt{
				Recipient: res.Recipient,
				Success:   res.Success,
				Error:     res.Error,
				Timestamp: time.Now().Round(time.Second).UTC(),
			}
		}(i, recipient)
	}
	wg.Wait()

	if err := w.store.Panics().AppendNotificationLog(event.ID, results); err != nil {
		log.Errorf("escalation failed to write notification log for panic '%s': %v", event.ID, err)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	log.WithFields(log.Fields{
		"panic_id":   event.ID,
		"recipients": len(results),
		"failed":     failed,
	}).Info("escalation notification fan-out settled")
}

// Acknowledge resolves a panic event and returns the device back to NORMAL.
// The resolution is written before the status flip so a crash between the two
// leaves a RESOLVED event with a still-CRITICAL device rather than a CRITICAL
// device with no open record. Re-acknowledging a resolved event is a no-op
// beyond returning the same device id.
func (w *Workflow) Acknowledge(panicID string) (string, error) {
	event, err := w.store.Panics().FindByID(panicID)
	if err != nil {
		return "", err
	}
	if event.Status == model.PanicStatusResolved {
		return event.DeviceID, nil
	}

	err = w.registry.Serialize(event.DeviceID, func() error {
		// Re-read under the device lock: a concurrent acknowledge may have
		// resolved the event between the lookup above and here.
		current, err := w.store.Panics().FindByID(panicID)
		if err != nil {
			return err
		}
		if current.Status == model.PanicStatusResolved {
			return nil
		}

		if err := w.store.Panics().Resolve(panicID, time.Now().Round(time.Second).UTC()); err != nil {
			return errors.Wrap(err, "failed to resolve panic event")
		}

		w.bus.Broadcast(TopicPanicResolved, PanicResolved{
			PanicID:  panicID,
			DeviceID: event.DeviceID,
			Status:   model.StatusNormal,
		})

		if _, err := w.registry.ApplyStatus(event.DeviceID, model.StatusNormal); err != nil {
			log.Errorf("escalation failed to set device '%s' back to normal: %v", event.DeviceID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"panic_id":  panicID,
		"device_id": event.DeviceID,
	}).Info("panic event acknowledged")

	return event.DeviceID, nil
}

// Wait blocks until all in-flight notification fan-outs settled. Used on
// shutdown and in tests.
func (w *Workflow) Wait() {
	w.wg.Wait()
}
