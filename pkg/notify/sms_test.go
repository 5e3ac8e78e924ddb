package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSMSProviderSend(t *testing.T) {
	var got smsRequest
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	p := NewSMSProvider("key-1", gateway.URL, "FamilyGuard")
	res := p.Send(context.Background(), "+2348010000001", "EMERGENCY: test")

	if !res.Success {
		t.Fatalf("expected a successful send, got error %q", res.Error)
	}
	if res.Recipient != "+2348010000001" {
		t.Errorf("unexpected recipient: %s", res.Recipient)
	}
	if got.APIKey != "key-1" || got.Sender != "FamilyGuard" {
		t.Errorf("unexpected gateway request: %+v", got)
	}
	if got.To != "+2348010000001" || got.Message != "EMERGENCY: test" {
		t.Errorf("unexpected gateway request: %+v", got)
	}
}

func TestSMSProviderGatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of credits", http.StatusPaymentRequired)
	}))
	defer gateway.Close()

	p := NewSMSProvider("key-1", gateway.URL, "")
	res := p.Send(context.Background(), "+2348010000001", "EMERGENCY: test")

	if res.Success {
		t.Fatal("expected a failed send")
	}
	if res.Error == "" {
		t.Error("expected the failure reason to be recorded")
	}
}

func TestSMSProviderMissingConfiguration(t *testing.T) {
	p := NewSMSProvider("", "", "")
	res := p.Send(context.Background(), "+2348010000001", "EMERGENCY: test")

	if res.Success {
		t.Fatal("expected a failed send without configuration")
	}
	if res.Error != "sms configuration missing" {
		t.Errorf("unexpected error: %s", res.Error)
	}
}

func TestSMSProviderCancelledContext(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewSMSProvider("key-1", gateway.URL, "")
	res := p.Send(ctx, "+2348010000001", "EMERGENCY: test")

	if res.Success {
		t.Fatal("expected a failed send with a cancelled context")
	}
}
