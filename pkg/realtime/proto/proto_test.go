package proto

import (
	"testing"
)

func TestUnmarshalHelloMessage(t *testing.T) {
	data := []byte(`[1, "device:secret-token", {}]`)

	msgType, msg, err := UnmarshalMessage(data)
	if err != nil {
		t.Fatalf("UnmarshalMessage failed: %v", err)
	}
	if msgType != MessageTypeHello {
		t.Fatalf("expected HELLO, got %s", msgType)
	}

	hello, err := MustHelloMessage(msg)
	if err != nil {
		t.Fatalf("MustHelloMessage failed: %v", err)
	}
	if hello.Credential != "device:secret-token" {
		t.Errorf("unexpected credential: %s", hello.Credential)
	}
}

func TestUnmarshalPublishMessage(t *testing.T) {
	data := []byte(`[20, 7, "location_update", {"latitude": 6.5244, "longitude": 3.3792}]`)

	msgType, msg, err := UnmarshalMessage(data)
	if err != nil {
		t.Fatalf("UnmarshalMessage failed: %v", err)
	}
	if msgType != MessageTypePublish {
		t.Fatalf("expected PUBLISH, got %s", msgType)
	}

	publish, err := MustPublishMessage(msg)
	if err != nil {
		t.Fatalf("MustPublishMessage failed: %v", err)
	}
	if publish.RequestID != 7 {
		t.Errorf("unexpected request ID: %d", publish.RequestID)
	}
	if publish.Topic != "location_update" {
		t.Errorf("unexpected topic: %s", publish.Topic)
	}

	args, ok := publish.Arguments.(map[string]interface{})
	if !ok {
		t.Fatalf("expected argument dict, got %T", publish.Arguments)
	}
	if args["latitude"] != 6.5244 {
		t.Errorf("unexpected latitude: %v", args["latitude"])
	}
}

func TestUnmarshalInvalidMessages(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no json", data: `hello`},
		{name: "empty envelope", data: `[]`},
		{name: "unknown type", data: `[99, "foo"]`},
		{name: "non numeric type", data: `["HELLO", "foo"]`},
		{name: "hello without credential", data: `[1]`},
		{name: "hello with numeric credential", data: `[1, 42]`},
		{name: "publish without topic", data: `[20, 1]`},
		{name: "publish with numeric topic", data: `[20, 1, 42]`},
		{name: "error too short", data: `[9, 20]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgType, _, err := UnmarshalMessage([]byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if msgType != MessageTypeInvalid {
				t.Errorf("expected invalid message type, got %s", msgType)
			}
		})
	}
}

func TestMarshalWelcomeMessage(t *testing.T) {
	out, err := MarshalNewWelcomeMessage(42, map[string]interface{}{"session_timeout": 120})
	if err != nil {
		t.Fatalf("MarshalNewWelcomeMessage failed: %v", err)
	}

	want := `[2,42,{"session_timeout":120}]`
	if string(out) != want {
		t.Errorf("unexpected encoding: got %s, want %s", string(out), want)
	}
}

func TestMarshalAbortMessageNilDetails(t *testing.T) {
	out, err := MarshalNewAbortMessage("ERR_NOT_AUTHORIZED", nil)
	if err != nil {
		t.Fatalf("MarshalNewAbortMessage failed: %v", err)
	}

	// Nil details must encode as an empty dict, not null.
	want := `[3,"ERR_NOT_AUTHORIZED",{}]`
	if string(out) != want {
		t.Errorf("unexpected encoding: got %s, want %s", string(out), want)
	}
}

func TestMarshalPublishedMessage(t *testing.T) {
	out, err := MarshalNewPublishedMessage(7, "pub-1")
	if err != nil {
		t.Fatalf("MarshalNewPublishedMessage failed: %v", err)
	}

	want := `[21,7,"pub-1"]`
	if string(out) != want {
		t.Errorf("unexpected encoding: got %s, want %s", string(out), want)
	}
}

func TestEventMessageRoundTrip(t *testing.T) {
	out, err := MarshalNewEventMessage("device_status_update", map[string]interface{}{
		"deviceId": "dev-1",
		"status":   "CRITICAL",
	})
	if err != nil {
		t.Fatalf("MarshalNewEventMessage failed: %v", err)
	}

	msgType, msg, err := UnmarshalMessage(out)
	if err != nil {
		t.Fatalf("UnmarshalMessage failed: %v", err)
	}
	if msgType != MessageTypeEvent {
		t.Fatalf("expected EVENT, got %s", msgType)
	}

	event, ok := msg.(EventMessage)
	if !ok {
		t.Fatalf("expected EventMessage, got %T", msg)
	}
	if event.Topic != "device_status_update" {
		t.Errorf("unexpected topic: %s", event.Topic)
	}

	payload, ok := event.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("expected payload dict, got %T", event.Payload)
	}
	if payload["status"] != "CRITICAL" {
		t.Errorf("unexpected status: %v", payload["status"])
	}
}
