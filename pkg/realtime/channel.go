package realtime

import (
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/realtime/proto"
)

type Status int

const (
	StatusEstablished Status = iota
	StatusRegistered
)

type Flag int

const (
	FlagContinue Flag = iota
	FlagCloseGracefully
	FlagTerminate
)

type Response struct {
	Flag Flag
	Data []byte
}

const registrationTimeout = 10 * time.Second

// Channel is one realtime connection from the websocket handshake until the
// connection closes. It owns the per-connection goroutines (inbox, outbox,
// keepalive watchdog) and hands classified messages to the controller.
type Channel struct {
	sync.RWMutex
	ctrl           *Controller
	conn           net.Conn
	status         Status
	session        model.Session
	sessionTimeout int

	stopCh       chan struct{}
	stopOnce     sync.Once
	registeredCh chan bool
	pingCh       chan bool

	wsTerminateCh chan<- struct{}
	terminateOnce sync.Once
	wsCloseCh     chan struct{}
	closeOnce     sync.Once
	wsOutboxCh    chan *Response
}

// Session returns a copy of the channel's session descriptor.
func (cc *Channel) Session() model.Session {
	cc.RLock()
	defer cc.RUnlock()
	return cc.session
}

// Close is called when the websocket handler method is exiting, e.g. the
// connection is closed.
func (cc *Channel) Close() {
	cc.stopOnce.Do(func() {
		close(cc.stopCh)
	})
	cc.ctrl.UnregisterSession(cc)
}

// HandleMessage is called by the inbox worker when data is received from the
// connected client.
func (cc *Channel) HandleMessage(data []byte) ([]byte, Flag, error) {
	log.Debugf("channel handles message '%s'", string(data))

	// Unmarshal the message to get the message type for further processing.
	msgType, msg, err := proto.UnmarshalMessage(data)
	if err != nil {
		return cc.terminateAndLogError("invalid payload", err)
	}

	switch msgType {
	case proto.MessageTypeHello:
		return cc.handleMessage(msg, cc.helloHandler())
	case proto.MessageTypePing:
		return cc.handleMessage(msg, cc.ensureRegistered(cc.keepAliveHandler()))
	case proto.MessageTypePublish:
		return cc.handleMessage(msg, cc.ensureRegistered(cc.publishHandler()))
	}

	return cc.terminateAndLog("unhandled message")
}

// AdmitRegistration is called by the controller after successful
// classification of the connection. It binds the session and starts the keep
// alive handling in the background (waitForPingOrClose).
func (cc *Channel) AdmitRegistration(session model.Session, sessionTimeout int) {
	cc.Lock()
	cc.status = StatusRegistered
	cc.session = session
	cc.sessionTimeout = sessionTimeout
	cc.Unlock()

	// Start the session timeout timer. If the client doesn't send a ping
	// within the given timeout the connection will be closed.
	go cc.waitForPingOrClose()

	log.Infof("channel registered %s session %d", session.Kind, session.ID)
}

func (cc *Channel) waitForRegistrationOrClose() {
	for {
		select {
		case <-cc.registeredCh:
			return
		case <-cc.stopCh:
			return
		case <-time.After(registrationTimeout):
			log.Warn("channel registration timed out, terminating the connection")
			cc.closeGraceful()
			return
		}
	}
}

func (cc *Channel) waitForPingOrClose() {
	for {
		select {
		case <-cc.pingCh:
			// Reset the timeout only, the loop continues.
		case <-cc.stopCh:
			return
		case <-time.After(time.Duration(cc.sessionTimeout) * time.Second):
			log.Warn("channel session timed out, terminating the connection")
			cc.closeGraceful()
			return
		}
	}
}

// messageHandler is a tooling for handling incoming messages, similar to the
// go http handler implementation. It allows middleware handlers such as
// ensureRegistered.
type messageHandler interface {
	Handle(msg interface{}) ([]byte, Flag, error)
}

type messageHandlerFunc func(msg interface{}) ([]byte, Flag, error)

func (f messageHandlerFunc) Handle(msg interface{}) ([]byte, Flag, error) {
	return f(msg)
}

func (cc *Channel) handleMessage(msg interface{}, h messageHandler) ([]byte, Flag, error) {
	cc.Lock()
	cc.session.LastMessageAt = time.Now().Round(time.Second).UTC()
	cc.Unlock()

	return h.Handle(msg)
}

func (cc *Channel) ensureRegistered(next messageHandler) messageHandler {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		cc.RLock()
		registered := cc.status == StatusRegistered
		cc.RUnlock()
		if !registered {
			return cc.terminateAndLog("channel is not registered")
		}
		return next.Handle(msg)
	})
}

func (cc *Channel) helloHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		helloMsg, err := proto.MustHelloMessage(msg)
		if err != nil {
			return cc.terminateAndLogError("hello message expected", err)
		}

		// Notify the waitForRegistrationOrClose go routine that we're about
		// to register the connection, otherwise the connection can be closed
		// during registration.
		cc.registeredCh <- true

		session, details, err := cc.ctrl.RegisterSession(cc, helloMsg.Credential)
		if err != nil && IsRegistrationError(err) {
			log.Warn("channel rejected: ", err.Error())
			e := err.(*RegistrationError)
			return cc.abortMessageAndClose(e.Reason, e.Details)
		} else if err != nil {
			log.Errorf("channel registration failed: %s", err.Error())
			return cc.terminateAndLogError("could not register channel", err)
		}

		return cc.welcomeMessage(session.ID, details)
	})
}

func (cc *Channel) keepAliveHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		// Notify the waitForPingOrClose method that we received a ping,
		// otherwise the session timeout occurs and closes the connection.
		go func() {
			select {
			case cc.pingCh <- true:
			case <-cc.stopCh:
			}
		}()

		return cc.pongMessage()
	})
}

func (cc *Channel) publishHandler() messageHandlerFunc {
	return messageHandlerFunc(func(msg interface{}) ([]byte, Flag, error) {
		publishMsg, err := proto.MustPublishMessage(msg)
		if err != nil {
			return cc.terminateAndLogError("publish message expected", err)
		}

		session := cc.Session()
		if session.Kind != model.SessionKindDevice {
			return cc.errorMessage(proto.MessageTypePublish, publishMsg.RequestID,
				ErrReasonNotAuthorized, "only device sessions publish reports")
		}

		publicationID, err := cc.ctrl.HandlePublish(session, publishMsg.Topic, publishMsg.Arguments)
		if err != nil {
			return cc.errorMessage(proto.MessageTypePublish, publishMsg.RequestID,
				publishErrorReason(err), err.Error())
		}

		return cc.publishedMessage(publishMsg.RequestID, publicationID)
	})
}

func (cc *Channel) terminateAndLog(message string) ([]byte, Flag, error) {
	log.Errorf("channel terminates with message: %s", message)
	cc.pushBackMessage(FlagTerminate, nil)
	return nil, FlagTerminate, nil
}

func (cc *Channel) terminateAndLogError(message string, err error) ([]byte, Flag, error) {
	log.Errorf("channel terminates with message and error: %s: %s", message, err.Error())
	cc.pushBackMessage(FlagTerminate, nil)
	return nil, FlagTerminate, nil
}

func (cc *Channel) abortMessageAndClose(reason string, details interface{}) ([]byte, Flag, error) {
	out, err := proto.MarshalNewAbortMessage(reason, details)
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagCloseGracefully, out)
	return out, FlagCloseGracefully, nil
}

func (cc *Channel) welcomeMessage(sessionID int32, details interface{}) ([]byte, Flag, error) {
	out, err := proto.MarshalNewWelcomeMessage(sessionID, details)
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

func (cc *Channel) pongMessage() ([]byte, Flag, error) {
	out, err := proto.MarshalNewPongMessage()
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

func (cc *Channel) errorMessage(msgType proto.MessageType, requestID int32, reason string, details interface{}) ([]byte, Flag, error) {
	out, err := proto.MarshalNewErrorMessage(msgType, requestID, reason, details)
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

func (cc *Channel) publishedMessage(requestID int32, publicationID string) ([]byte, Flag, error) {
	out, err := proto.MarshalNewPublishedMessage(requestID, publicationID)
	if err != nil {
		return cc.terminateAndLogError("could not marshal message", err)
	}
	cc.pushBackMessage(FlagContinue, out)
	return out, FlagContinue, nil
}

// push enqueues an outbound broadcast frame without blocking. A full outbox
// means the session is skipped for this event.
func (cc *Channel) push(data []byte) bool {
	return cc.pushBackMessage(FlagContinue, data)
}

func (cc *Channel) pushBackMessage(flag Flag, data []byte) bool {
	select {
	case cc.wsOutboxCh <- newResponse(flag, data):
		return true
	default:
		return false // Buffer is full
	}
}

func (cc *Channel) closeGraceful() {
	cc.closeOnce.Do(func() {
		close(cc.wsCloseCh)
	})
}

func (cc *Channel) terminate() {
	cc.terminateOnce.Do(func() {
		close(cc.wsTerminateCh)
	})
}

func newResponse(flag Flag, data []byte) *Response {
	r := &Response{
		Flag: flag,
	}
	if data != nil {
		r.Data = make([]byte, len(data))
		copy(r.Data, data)
	}
	return r
}
