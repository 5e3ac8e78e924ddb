package realtime

import (
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/escalation"
	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/presence"
	"github.com/Procodx/familyGuardian/pkg/storage"
)

const (
	credentialPrefixDevice   = "device:"
	credentialPrefixOperator = "operator:"

	defaultSessionTimeout = 120 // seconds
	pingInterval          = 30  // seconds, advertised to clients
)

var errUnknownTopic = errors.New("realtime: unknown publish topic")

// Config carries the connection-level settings of the controller.
type Config struct {
	// OperatorSecret verifies operator bearer tokens during the handshake.
	// When empty, verification is deferred to the HTTP auth boundary and only
	// the presence of a token is required.
	OperatorSecret string
	// SessionTimeout is the keepalive window in seconds.
	SessionTimeout int
	// OfflineOverridesCritical preserves the historical behavior of a
	// disconnect unconditionally flipping the device OFFLINE, even while a
	// panic event is still active. Setting it to false keeps CRITICAL
	// visible until the event is acknowledged.
	OfflineOverridesCritical bool
}

// Controller classifies inbound realtime connections and routes device
// reports into the presence registry and the escalation workflow.
type Controller struct {
	store    storage.Interface
	registry *presence.Registry
	workflow *escalation.Workflow
	hub      *Hub
	cfg      Config
}

// NewController creates the connection controller.
func NewController(store storage.Interface, registry *presence.Registry, workflow *escalation.Workflow, hub *Hub, cfg Config) *Controller {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = defaultSessionTimeout
	}
	return &Controller{
		store:    store,
		registry: registry,
		workflow: workflow,
		hub:      hub,
		cfg:      cfg,
	}
}

// NewChannel creates a channel for an upgraded websocket connection and
// starts its worker goroutines.
func (ctrl *Controller) NewChannel(conn net.Conn, terminateCh chan<- struct{}) *Channel {
	cc := &Channel{
		ctrl:          ctrl,
		conn:          conn,
		status:        StatusEstablished,
		stopCh:        make(chan struct{}),
		registeredCh:  make(chan bool),
		pingCh:        make(chan bool),
		wsTerminateCh: terminateCh,
		wsCloseCh:     make(chan struct{}),
		wsOutboxCh:    make(chan *Response, 100),
	}

	go cc.inboxWorker()
	go cc.outboxWorker()

	// Ensure that registration happens within the given period.
	go cc.waitForRegistrationOrClose()

	return cc
}

// RegisterSession classifies the handshake credential and binds a session to
// the channel. A device credential is matched against the stored device
// tokens; an unknown credential terminates the connection with an ABORT the
// caller can observe.
func (ctrl *Controller) RegisterSession(cc *Channel, credential string) (model.Session, interface{}, error) {
	now := time.Now().Round(time.Second).UTC()

	var session model.Session
	switch {
	case strings.HasPrefix(credential, credentialPrefixDevice):
		token := strings.TrimPrefix(credential, credentialPrefixDevice)
		device, err := ctrl.store.Devices().FindByToken(token)
		if err == storage.ErrNotFound {
			return model.Session{}, nil, NewRegistrationError(ErrReasonNoSuchDevice,
				"no device is registered for the presented token")
		} else if err != nil {
			return model.Session{}, nil, errors.Wrap(err, "failed to look up device token")
		}

		session = model.Session{
			Kind:          model.SessionKindDevice,
			KindName:      model.SessionKindDevice.String(),
			DeviceID:      device.DeviceID,
			ConnectedAt:   now,
			LastMessageAt: now,
		}

	case strings.HasPrefix(credential, credentialPrefixOperator):
		token := strings.TrimPrefix(credential, credentialPrefixOperator)
		if err := ctrl.verifyOperatorToken(token); err != nil {
			return model.Session{}, nil, NewRegistrationError(ErrReasonNotAuthorized, err.Error())
		}

		session = model.Session{
			Kind:          model.SessionKindOperator,
			KindName:      model.SessionKindOperator.String(),
			ConnectedAt:   now,
			LastMessageAt: now,
		}

	default:
		return model.Session{}, nil, NewRegistrationError(ErrReasonNotAuthorized,
			"handshake carries no recognizable credential")
	}

	session.ID = ctrl.hub.Register(cc)
	cc.AdmitRegistration(session, ctrl.cfg.SessionTimeout)

	if session.Kind == model.SessionKindDevice {
		// A device that can open a connection is not offline. If a panic
		// event is still open the device resurfaces as CRITICAL, keeping
		// status and panic record in agreement.
		status := model.StatusNormal
		if _, err := ctrl.store.Panics().FindActiveByDeviceID(session.DeviceID); err == nil {
			status = model.StatusCritical
		}
		if _, err := ctrl.registry.SetStatus(session.DeviceID, status); err != nil {
			log.Errorf("controller failed to mark device '%s' %s: %v", session.DeviceID, status, err)
		}
	}

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"kind":       session.Kind.String(),
		"device_id":  session.DeviceID,
	}).Info("controller registered a new realtime session")

	type registrationDetails struct {
		SessionTimeout int `json:"session_timeout,omitempty"`
		PingInterval   int `json:"ping_interval,omitempty"`
	}

	details := &registrationDetails{
		SessionTimeout: ctrl.cfg.SessionTimeout,
		PingInterval:   pingInterval,
	}
	return session, details, nil
}

// UnregisterSession removes the channel's session from the table and, for
// device sessions, marks the device offline. In-flight escalation work the
// device triggered is never cancelled by its disconnect.
func (ctrl *Controller) UnregisterSession(cc *Channel) {
	session := cc.Session()
	if session.ID == 0 {
		return // never registered
	}

	ctrl.hub.Unregister(session.ID)

	if session.Kind == model.SessionKindDevice {
		if !ctrl.cfg.OfflineOverridesCritical {
			if _, err := ctrl.store.Panics().FindActiveByDeviceID(session.DeviceID); err == nil {
				log.Warnf("device '%s' disconnected with an active panic event, keeping CRITICAL", session.DeviceID)
				return
			}
		}
		if _, err := ctrl.registry.SetStatus(session.DeviceID, model.StatusOffline); err != nil {
			log.Errorf("controller failed to mark device '%s' offline: %v", session.DeviceID, err)
		}
	}

	log.Infof("controller removed realtime session %d", session.ID)
}

func (ctrl *Controller) verifyOperatorToken(token string) error {
	if token == "" {
		return errors.New("operator token is missing")
	}
	if ctrl.cfg.OperatorSecret == "" {
		// Verification deferred to the HTTP auth boundary.
		return nil
	}

	_, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(ctrl.cfg.OperatorSecret), nil
	})
	return err
}

type telemetryReport struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Accuracy     float64 `json:"accuracy"`
	Timestamp    int64   `json:"timestamp"`
	BatteryLevel *int    `json:"batteryLevel"`
}

type panicAlert struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	BatteryLevel *int     `json:"batteryLevel"`
}

// HandlePublish routes a device report to the responsible component and
// returns the publication ID confirmed to the device.
func (ctrl *Controller) HandlePublish(session model.Session, topic string, arguments interface{}) (string, error) {
	switch topic {
	case "location_update":
		return ctrl.handleLocationUpdate(session, arguments)
	case "panic_alert":
		return ctrl.handlePanicAlert(session, arguments)
	}
	return "", errUnknownTopic
}

func (ctrl *Controller) handleLocationUpdate(session model.Session, arguments interface{}) (string, error) {
	report := telemetryReport{}
	if err := decodeArguments(arguments, &report); err != nil {
		log.Warnf("dropped malformed telemetry from device '%s': %v", session.DeviceID, err)
		return "", errors.Wrap(presence.ErrInvalidCoordinates, err.Error())
	}

	capturedAt := time.Now().Round(time.Second).UTC()
	if report.Timestamp > 0 {
		capturedAt = time.UnixMilli(report.Timestamp).UTC()
	}

	location := model.Location{
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		Accuracy:  report.Accuracy,
		Timestamp: capturedAt,
	}

	device, err := ctrl.registry.RecordTelemetry(session.DeviceID, location, report.BatteryLevel)
	if err != nil {
		if errors.Cause(err) == presence.ErrInvalidCoordinates {
			log.Warnf("dropped telemetry with invalid coordinates from device '%s'", session.DeviceID)
		}
		return "", err
	}

	return device.DeviceID + "/" + capturedAt.Format(time.RFC3339), nil
}

func (ctrl *Controller) handlePanicAlert(session model.Session, arguments interface{}) (string, error) {
	// A panic with unusable arguments still escalates; the location is
	// simply omitted from the event and the alert message.
	alert := panicAlert{}
	if err := decodeArguments(arguments, &alert); err != nil {
		log.Warnf("panic alert from device '%s' carries unusable arguments: %v", session.DeviceID, err)
		alert = panicAlert{}
	}

	var location *model.Location
	if alert.Latitude != nil && alert.Longitude != nil {
		loc := model.Location{
			Latitude:  *alert.Latitude,
			Longitude: *alert.Longitude,
			Timestamp: time.Now().Round(time.Second).UTC(),
		}
		if loc.Valid() {
			location = &loc
		}
	}

	event, err := ctrl.workflow.Trigger(session.DeviceID, location, alert.BatteryLevel)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

func decodeArguments(arguments interface{}, v interface{}) error {
	data, err := json.Marshal(arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func publishErrorReason(err error) string {
	switch errors.Cause(err) {
	case presence.ErrInvalidCoordinates:
		return ErrReasonInvalidArgument
	case errUnknownTopic:
		return ErrReasonNoSuchTopic
	case storage.ErrNotFound:
		return ErrReasonNoSuchDevice
	}
	return ErrReasonTechnicalException
}
