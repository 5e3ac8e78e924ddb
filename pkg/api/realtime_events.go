package api

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/api/resource"
	"github.com/Procodx/familyGuardian/pkg/realtime"
)

// realtimeEventsHandler streams the mirrored broadcast events to a websocket
// client. It is the read-only counterpart of the realtime engine's operator
// sessions, intended for dashboards that only consume the NATS mirror.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.nc == nil {
			return echo.NewHTTPError(503, "event mirror is not available")
		}

		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}
		defer conn.Close()

		sub, err := h.nc.Subscribe(realtime.SubjectPrefix+"*", func(msg *nats.Msg) {
			topic := strings.TrimPrefix(msg.Subject, realtime.SubjectPrefix)

			var mirror struct {
				Timestamp time.Time   `json:"timestamp"`
				Payload   interface{} `json:"payload"`
			}
			if err := json.Unmarshal(msg.Data, &mirror); err != nil {
				log.Error("api: failed to parse mirrored event: ", err)
				return
			}

			event := resource.NewRealtimeEvent(topic, mirror.Timestamp, mirror.Payload)
			out, _ := json.Marshal(event)
			if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
				log.Error("api: failed to send realtime event: ", err)
			}
		})
		if err != nil {
			log.Error("api: failed to subscribe to event mirror: ", err)
			return nil
		}
		defer sub.Unsubscribe()

		// Drain the client side until it closes the connection. Inbound data
		// is ignored, the stream is one-way.
		for {
			if _, err := wsutil.ReadClientMessage(conn, nil); err != nil {
				if err != io.EOF {
					log.Debug("api: realtime events client gone: ", err)
				}
				return nil
			}
		}
	}
}
