package realtime

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/realtime/proto"
)

// SubjectPrefix is the NATS subject prefix the bus mirrors every operator
// broadcast to, one subject per topic.
const SubjectPrefix = "guardian.realtime.v1.events."

// Bus implements the broadcast fan-out: every event is delivered at most once
// to each currently connected operator session and mirrored to NATS for
// external consumers. Delivery is best-effort; a slow session whose outbox is
// full is skipped for that event, never waited on.
type Bus struct {
	hub *Hub
	nc  *nats.Conn
}

// NewBus creates the fan-out over the session table. nc may be nil, in which
// case the NATS mirror is disabled.
func NewBus(hub *Hub, nc *nats.Conn) *Bus {
	return &Bus{
		hub: hub,
		nc:  nc,
	}
}

type mirrorEvent struct {
	Topic     string      `json:"topic"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Broadcast publishes one event to every connected operator session.
func (b *Bus) Broadcast(topic string, payload interface{}) {
	data, err := proto.MarshalNewEventMessage(topic, payload)
	if err != nil {
		log.Errorf("bus failed to marshal event '%s': %v", topic, err)
		return
	}

	for _, cc := range b.hub.Operators() {
		if !cc.push(data) {
			log.Warnf("bus skipped session %d for event '%s': outbox full", cc.Session().ID, topic)
		}
	}

	if b.nc != nil {
		out, err := json.Marshal(mirrorEvent{
			Topic:     topic,
			Timestamp: time.Now().Round(time.Second).UTC(),
			Payload:   payload,
		})
		if err != nil {
			log.Errorf("bus failed to marshal mirror event '%s': %v", topic, err)
			return
		}
		if err := b.nc.Publish(SubjectPrefix+topic, out); err != nil {
			log.Errorf("bus failed to mirror event '%s' to nats: %v", topic, err)
		}
	}
}
