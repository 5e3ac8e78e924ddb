package resource

import "time"

type RealtimeEventResource struct {
	Topic     string      `json:"topic"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

func NewRealtimeEvent(topic string, timestamp time.Time, payload interface{}) *RealtimeEventResource {
	return &RealtimeEventResource{
		Topic:     topic,
		Timestamp: timestamp,
		Payload:   payload,
	}
}
