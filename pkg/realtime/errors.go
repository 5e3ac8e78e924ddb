package realtime

import "fmt"

// Rejection reasons sent in ABORT and ERROR envelopes.
const (
	ErrReasonNoSuchDevice       string = "ERR_NO_SUCH_DEVICE"
	ErrReasonNotAuthorized      string = "ERR_NOT_AUTHORIZED"
	ErrReasonInvalidArgument    string = "ERR_INVALID_ARGUMENT"
	ErrReasonNoSuchTopic        string = "ERR_NO_SUCH_TOPIC"
	ErrReasonTechnicalException string = "ERR_TECHNICAL_EXCEPTION"
)

// RegistrationError rejects a connection during the handshake. The client
// observes an ABORT message followed by a graceful close; reconnecting is the
// client's business.
type RegistrationError struct {
	Reason  string
	Details interface{}
}

func NewRegistrationError(reason string, details interface{}) error {
	return &RegistrationError{
		Reason:  reason,
		Details: details,
	}
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed: reason: %s", e.Reason)
}

func IsRegistrationError(e error) bool {
	_, ok := e.(*RegistrationError)
	return ok
}
