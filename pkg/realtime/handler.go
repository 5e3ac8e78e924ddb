package realtime

import (
	"github.com/gobwas/ws"
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"
)

// Handler serves the realtime websocket endpoint.
type Handler struct {
	ctrl *Controller
}

// NewHandler creates a new realtime handler.
func NewHandler(ctrl *Controller) *Handler {
	return &Handler{
		ctrl: ctrl,
	}
}

// RegisterRoutes attaches the handlers to the echo web server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register realtime routes")
	api := e.Group("/realtime")
	api.Any("/v1", h.channelHandler())
}

func (h *Handler) channelHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			return err
		}
		defer conn.Close()

		terminateCh := make(chan struct{})

		cc := h.ctrl.NewChannel(conn, terminateCh)
		defer cc.Close()

		<-terminateCh

		log.Debug("handler exit realtime channel handler func")
		return nil
	}
}
