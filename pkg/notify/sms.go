package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// SMSProvider dispatches alert messages through an HTTP SMS gateway. Missing
// configuration reduces every send to a failed result instead of an error so
// the escalation workflow stays uniform.
type SMSProvider struct {
	apiKey   string
	baseURL  string
	senderID string
	client   *http.Client
}

// NewSMSProvider creates a provider for the given gateway settings. The
// client timeout is the upper bound for one dispatch; the escalation workflow
// additionally applies its own per-recipient context deadline.
func NewSMSProvider(apiKey, baseURL, senderID string) *SMSProvider {
	return &SMSProvider{
		apiKey:   apiKey,
		baseURL:  baseURL,
		senderID: senderID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type smsRequest struct {
	APIKey  string `json:"apiKey"`
	Sender  string `json:"sender,omitempty"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts one message to the gateway and reduces every failure mode to a
// Result with Success=false.
func (p *SMSProvider) Send(ctx context.Context, phoneNumber, message string) Result {
	if p.apiKey == "" || p.baseURL == "" {
		log.Error("sms configuration missing")
		return Result{Recipient: phoneNumber, Error: "sms configuration missing"}
	}

	body, err := json.Marshal(smsRequest{
		APIKey:  p.apiKey,
		Sender:  p.senderID,
		To:      phoneNumber,
		Message: message,
	})
	if err != nil {
		return Result{Recipient: phoneNumber, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return Result{Recipient: phoneNumber, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Infof("sending SMS to %s", phoneNumber)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Errorf("failed to send SMS to %s: %s", phoneNumber, err.Error())
		return Result{Recipient: phoneNumber, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(data))
		log.Errorf("failed to send SMS to %s: %s", phoneNumber, reason)
		return Result{Recipient: phoneNumber, Error: reason}
	}

	log.Infof("SMS sent to %s successfully", phoneNumber)
	return Result{Recipient: phoneNumber, Success: true}
}
