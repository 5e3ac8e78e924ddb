package proto

import (
	"encoding/json"
	"fmt"
)

func unmarshalMessageType(v interface{}) (MessageType, error) {
	msgTypes := map[int]MessageType{
		1:  MessageTypeHello,
		2:  MessageTypeWelcome,
		3:  MessageTypeAbort,
		4:  MessageTypePing,
		5:  MessageTypePong,
		9:  MessageTypeError,
		20: MessageTypePublish,
		21: MessageTypePublished,
		30: MessageTypeEvent}

	i, ok := v.(float64)
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("realtime: invalid message type given")
	}

	msgType, ok := msgTypes[int(i)]
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("realtime: unknown message type given")
	}

	return msgType, nil
}

func UnmarshalMessage(data []byte) (MessageType, interface{}, error) {
	var envelope []interface{}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("realtime: invalid message data: %s", err.Error())
	}

	if len(envelope) < 1 {
		return MessageTypeInvalid, nil, fmt.Errorf("realtime: message does not contain a message type")
	}

	msgType, err := unmarshalMessageType(envelope[0])
	if err != nil {
		return msgType, nil, err
	}

	switch msgType {
	case MessageTypeHello:
		return unmarshalHelloMessage(envelope)
	case MessageTypeWelcome:
		return unmarshalWelcomeMessage(envelope)
	case MessageTypeAbort:
		return unmarshalAbortMessage(envelope)
	case MessageTypePing:
		return unmarshalPingMessage(envelope)
	case MessageTypePong:
		return unmarshalPongMessage(envelope)
	case MessageTypeError:
		return unmarshalErrorMessage(envelope)
	case MessageTypePublish:
		return unmarshalPublishMessage(envelope)
	case MessageTypePublished:
		return unmarshalPublishedMessage(envelope)
	case MessageTypeEvent:
		return unmarshalEventMessage(envelope)
	}

	// This return should never be reached
	return MessageTypeInvalid, nil, fmt.Errorf("an unexpected error happened during unmarshalling the message")
}

func unmarshalHelloMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete hello message")
	}

	credential, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("hello message contains invalid credential type")
	}

	var details interface{}
	if len(envelope) == 3 {
		details = envelope[2]
	}

	return MessageTypeHello, HelloMessage{
		Credential: credential,
		Details:    details,
	}, nil
}

func unmarshalWelcomeMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete welcome message")
	}

	sessID, ok := envelope[1].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("welcome message contains invalid session ID type")
	}

	var details interface{}
	if len(envelope) == 3 {
		details = envelope[2]
	}

	return MessageTypeWelcome, WelcomeMessage{
		SessionID: int32(sessID),
		Details:   details,
	}, nil
}

func unmarshalAbortMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete abort message")
	}

	reason, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("abort message contains invalid reason type")
	}

	var details interface{}
	if len(envelope) == 3 {
		details = envelope[2]
	}

	return MessageTypeAbort, AbortMessage{
		Reason:  reason,
		Details: details,
	}, nil
}

func unmarshalPingMessage(envelope []interface{}) (MessageType, interface{}, error) {
	var details interface{}
	if len(envelope) == 2 {
		details = envelope[1]
	}

	return MessageTypePing, PingMessage{
		Details: details,
	}, nil
}

func unmarshalPongMessage(envelope []interface{}) (MessageType, interface{}, error) {
	var details interface{}
	if len(envelope) == 2 {
		details = envelope[1]
	}

	return MessageTypePong, PongMessage{
		Details: details,
	}, nil
}

func unmarshalErrorMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 4 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete error message")
	}

	origType, ok := envelope[1].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("error message contains invalid message type")
	}

	requestID, ok := envelope[2].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("error message contains invalid request ID type")
	}

	errReason, ok := envelope[3].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("error message contains invalid error type")
	}

	var details interface{}
	if len(envelope) == 5 {
		details = envelope[4]
	}

	return MessageTypeError, ErrorMessage{
		MessageType: MessageType(int(origType)),
		RequestID:   int32(requestID),
		Error:       errReason,
		Details:     details,
	}, nil
}

func unmarshalPublishMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete publish message")
	}

	requestID, ok := envelope[1].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("publish message contains invalid request ID type")
	}

	topic, ok := envelope[2].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("publish message contains invalid topic type")
	}

	var arguments interface{}
	if len(envelope) == 4 {
		arguments = envelope[3]
	}

	return MessageTypePublish, PublishMessage{
		RequestID: int32(requestID),
		Topic:     topic,
		Arguments: arguments,
	}, nil
}

func unmarshalPublishedMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete published message")
	}

	requestID, ok := envelope[1].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("published message contains invalid request ID type")
	}

	publicationID, ok := envelope[2].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("published message contains invalid publication ID type")
	}

	return MessageTypePublished, PublishedMessage{
		RequestID:     int32(requestID),
		PublicationID: publicationID,
	}, nil
}

func unmarshalEventMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete event message")
	}

	topic, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("event message contains invalid topic type")
	}

	return MessageTypeEvent, EventMessage{
		Topic:   topic,
		Payload: envelope[2],
	}, nil
}
