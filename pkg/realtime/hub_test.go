package realtime

import (
	"testing"
	"time"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/realtime/proto"
)

func newTestChannel(kind model.SessionKind, outbox int) *Channel {
	cc := &Channel{
		status:        StatusRegistered,
		stopCh:        make(chan struct{}),
		registeredCh:  make(chan bool),
		pingCh:        make(chan bool),
		wsTerminateCh: make(chan struct{}),
		wsCloseCh:     make(chan struct{}),
		wsOutboxCh:    make(chan *Response, outbox),
	}
	cc.session = model.Session{
		Kind:        kind,
		KindName:    kind.String(),
		ConnectedAt: time.Now().UTC(),
	}
	return cc
}

func TestHubRegisterAssignsUniqueIDs(t *testing.T) {
	hub := NewHub()

	a := hub.Register(newTestChannel(model.SessionKindDevice, 1))
	b := hub.Register(newTestChannel(model.SessionKindOperator, 1))
	if a == b {
		t.Errorf("expected unique session IDs, got %d twice", a)
	}

	if got := len(hub.Sessions()); got != 2 {
		t.Errorf("expected 2 sessions, got %d", got)
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	id := hub.Register(newTestChannel(model.SessionKindDevice, 1))

	hub.Unregister(id)
	if got := len(hub.Sessions()); got != 0 {
		t.Errorf("expected 0 sessions, got %d", got)
	}

	// Double unregister stays harmless.
	hub.Unregister(id)
}

func TestHubOperatorsFiltersDevices(t *testing.T) {
	hub := NewHub()
	hub.Register(newTestChannel(model.SessionKindDevice, 1))
	operator := newTestChannel(model.SessionKindOperator, 1)
	hub.Register(operator)

	operators := hub.Operators()
	if len(operators) != 1 {
		t.Fatalf("expected 1 operator channel, got %d", len(operators))
	}
	if operators[0] != operator {
		t.Error("expected the operator channel in the snapshot")
	}
}

func TestChannelPushSkipsWhenOutboxFull(t *testing.T) {
	cc := newTestChannel(model.SessionKindOperator, 1)

	if !cc.push([]byte("first")) {
		t.Fatal("expected the first push to succeed")
	}
	if cc.push([]byte("second")) {
		t.Error("expected the second push to be dropped on a full outbox")
	}
}

func TestBusBroadcastReachesOnlyOperators(t *testing.T) {
	hub := NewHub()
	device := newTestChannel(model.SessionKindDevice, 4)
	operator := newTestChannel(model.SessionKindOperator, 4)
	hub.Register(device)
	hub.Register(operator)

	bus := NewBus(hub, nil)
	bus.Broadcast("device_status_update", map[string]interface{}{
		"deviceId": "dev-1",
		"status":   "NORMAL",
	})

	select {
	case res := <-operator.wsOutboxCh:
		msgType, msg, err := proto.UnmarshalMessage(res.Data)
		if err != nil {
			t.Fatalf("failed to unmarshal broadcast frame: %v", err)
		}
		if msgType != proto.MessageTypeEvent {
			t.Fatalf("expected EVENT frame, got %s", msgType)
		}
		event := msg.(proto.EventMessage)
		if event.Topic != "device_status_update" {
			t.Errorf("unexpected topic: %s", event.Topic)
		}
	default:
		t.Fatal("expected a frame in the operator outbox")
	}

	select {
	case <-device.wsOutboxCh:
		t.Fatal("device sessions must not receive operator broadcasts")
	default:
	}
}

func TestBusBroadcastSkipsFullOutbox(t *testing.T) {
	hub := NewHub()
	slow := newTestChannel(model.SessionKindOperator, 1)
	fast := newTestChannel(model.SessionKindOperator, 4)
	hub.Register(slow)
	hub.Register(fast)

	// Fill the slow session's outbox.
	slow.push([]byte("stale"))

	bus := NewBus(hub, nil)
	bus.Broadcast("device_status_update", map[string]interface{}{"deviceId": "dev-1"})

	select {
	case <-fast.wsOutboxCh:
	default:
		t.Error("expected the fast session to receive the event")
	}

	// The slow session still holds only the stale frame.
	res := <-slow.wsOutboxCh
	if string(res.Data) != "stale" {
		t.Errorf("expected the stale frame, got %q", string(res.Data))
	}
	select {
	case <-slow.wsOutboxCh:
		t.Error("expected the broadcast to be dropped for the full outbox")
	default:
	}
}
