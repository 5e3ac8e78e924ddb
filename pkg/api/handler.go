package api

import (
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/escalation"
	"github.com/Procodx/familyGuardian/pkg/realtime"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

// Config carries the settings of the management API.
type Config struct {
	// JWTSecret signs operator access tokens. When empty the mutating routes
	// are left unguarded, which is only acceptable for local development.
	JWTSecret string
}

// Handler contains all properties to serve the API
type Handler struct {
	nc       *nats.Conn
	store    storage.Interface
	hub      *realtime.Hub
	workflow *escalation.Workflow
	cfg      Config
}

// NewHandler create a new API handler
func NewHandler(nc *nats.Conn, store storage.Interface, hub *realtime.Hub, workflow *escalation.Workflow, cfg Config) *Handler {
	return &Handler{
		nc:       nc,
		store:    store,
		hub:      hub,
		workflow: workflow,
		cfg:      cfg,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")

	api.POST("/auth/login", h.handleLogin)

	api.GET("/devices", h.handleFetchDevices)
	api.POST("/devices", h.handleRegisterDevice)
	api.GET("/devices/:id", h.handleGetDeviceByID)

	api.GET("/devices/:id/contacts", h.handleFetchContacts)
	api.POST("/devices/:id/contacts", h.handleCreateContact, h.requireOperator)
	api.DELETE("/devices/:id/contacts/:contactId", h.handleDeleteContact, h.requireOperator)

	api.GET("/panics", h.handleFetchPanics)
	api.GET("/panics/:id", h.handleGetPanicByID)
	api.PATCH("/panics/:id/acknowledge", h.handleAcknowledgePanic, h.requireOperator)

	api.GET("/sessions", h.handleFetchSessions)

	api.Any("/realtime-events", h.realtimeEventsHandler())
}
