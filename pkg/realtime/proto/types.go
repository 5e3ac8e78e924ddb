package proto

import "fmt"

type MessageType int

const (
	MessageTypeInvalid   MessageType = 0
	MessageTypeHello     MessageType = 1
	MessageTypeWelcome   MessageType = 2
	MessageTypeAbort     MessageType = 3
	MessageTypePing      MessageType = 4
	MessageTypePong      MessageType = 5
	MessageTypeError     MessageType = 9
	MessageTypePublish   MessageType = 20
	MessageTypePublished MessageType = 21
	MessageTypeEvent     MessageType = 30
)

func (msgType MessageType) String() string {
	names := map[MessageType]string{
		MessageTypeHello:     "HELLO",
		MessageTypeWelcome:   "WELCOME",
		MessageTypeAbort:     "ABORT",
		MessageTypePing:      "PING",
		MessageTypePong:      "PONG",
		MessageTypeError:     "ERROR",
		MessageTypePublish:   "PUBLISH",
		MessageTypePublished: "PUBLISHED",
		MessageTypeEvent:     "EVENT"}

	msgTypeName, ok := names[msgType]
	if !ok {
		return ""
	}

	return msgTypeName
}

// HelloMessage opens a session. Credential carries the handshake secret,
// either "device:<token>" or "operator:<bearer token>".
type HelloMessage struct {
	Credential string
	Details    interface{}
}

type WelcomeMessage struct {
	SessionID int32
	Details   interface{}
}

type AbortMessage struct {
	Reason  string
	Details interface{}
}

type PingMessage struct {
	Details interface{}
}

type PongMessage struct {
	Details interface{}
}

type ErrorMessage struct {
	MessageType MessageType
	RequestID   int32
	Error       string
	Details     interface{}
}

// PublishMessage is a device-originated report, e.g. topic "location_update"
// or "panic_alert".
type PublishMessage struct {
	RequestID int32
	Topic     string
	Arguments interface{}
}

type PublishedMessage struct {
	RequestID     int32
	PublicationID string
}

// EventMessage is an engine-originated broadcast to operator sessions.
type EventMessage struct {
	Topic   string
	Payload interface{}
}

func MustHelloMessage(msg interface{}) (*HelloMessage, error) {
	m, ok := msg.(HelloMessage)
	if !ok {
		return nil, fmt.Errorf("realtime: message is not a hello message")
	}
	return &m, nil
}

func MustPingMessage(msg interface{}) (*PingMessage, error) {
	m, ok := msg.(PingMessage)
	if !ok {
		return nil, fmt.Errorf("realtime: message is not a ping message")
	}
	return &m, nil
}

func MustPublishMessage(msg interface{}) (*PublishMessage, error) {
	m, ok := msg.(PublishMessage)
	if !ok {
		return nil, fmt.Errorf("realtime: message is not a publish message")
	}
	return &m, nil
}
