package proto

import "encoding/json"

func (m HelloMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeHello)
	envelope[1] = m.Credential
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m WelcomeMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeWelcome)
	envelope[1] = m.SessionID
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m AbortMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeAbort)
	envelope[1] = m.Reason
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PingMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePing)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PongMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePong)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m ErrorMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 5)
	envelope[0] = int(MessageTypeError)
	envelope[1] = int(m.MessageType)
	envelope[2] = m.RequestID
	envelope[3] = m.Error
	envelope[4] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PublishMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 4)
	envelope[0] = int(MessageTypePublish)
	envelope[1] = m.RequestID
	envelope[2] = m.Topic
	envelope[3] = ensureEmptyDictIfNil(m.Arguments)

	return json.Marshal(envelope)
}

func (m PublishedMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypePublished)
	envelope[1] = m.RequestID
	envelope[2] = m.PublicationID

	return json.Marshal(envelope)
}

func (m EventMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeEvent)
	envelope[1] = m.Topic
	envelope[2] = ensureEmptyDictIfNil(m.Payload)

	return json.Marshal(envelope)
}

func MarshalNewWelcomeMessage(sessionID int32, details interface{}) ([]byte, error) {
	msg := WelcomeMessage{SessionID: sessionID, Details: details}
	return msg.Marshal()
}

func MarshalNewAbortMessage(reason string, details interface{}) ([]byte, error) {
	msg := AbortMessage{Reason: reason, Details: details}
	return msg.Marshal()
}

func MarshalNewPongMessage() ([]byte, error) {
	msg := PongMessage{}
	return msg.Marshal()
}

func MarshalNewErrorMessage(msgType MessageType, requestID int32, reason string, details interface{}) ([]byte, error) {
	msg := ErrorMessage{MessageType: msgType, RequestID: requestID, Error: reason, Details: details}
	return msg.Marshal()
}

func MarshalNewPublishedMessage(requestID int32, publicationID string) ([]byte, error) {
	msg := PublishedMessage{RequestID: requestID, PublicationID: publicationID}
	return msg.Marshal()
}

func MarshalNewEventMessage(topic string, payload interface{}) ([]byte, error) {
	msg := EventMessage{Topic: topic, Payload: payload}
	return msg.Marshal()
}

func ensureEmptyDictIfNil(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
