package emailcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach_backend/platform/logger"
)

type testValidationConfig struct {
	baseURL string
	apiKey  string
}

func (c testValidationConfig) GetEmailValidationBaseURL() string { return c.baseURL }
func (c testValidationConfig) GetEmailValidationAPIKey() string  { return c.apiKey }

func TestCheck_UnconfiguredProviderPassesEverything(t *testing.T) {
	checker := New(testValidationConfig{}, logger.New("development"))

	verdict, err := checker.Check(context.Background(), "anyone@anywhere.com")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict != VerdictValid {
		t.Fatalf("unconfigured checker must answer valid, got %q", verdict)
	}
}

func TestCheck_EmptyAddressIsInvalid(t *testing.T) {
	checker := New(testValidationConfig{}, logger.New("development"))

	verdict, err := checker.Check(context.Background(), "   ")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict != VerdictInvalid {
		t.Fatalf("empty address must be invalid, got %q", verdict)
	}
}

func TestCheck_ProviderVerdicts(t *testing.T) {
	cases := []struct {
		body string
		want Verdict
	}{
		{`{"deliverability":"DELIVERABLE","is_catchall_email":{"value":false}}`, VerdictValid},
		{`{"deliverability":"DELIVERABLE","is_catchall_email":{"value":true}}`, VerdictCatchAll},
		{`{"deliverability":"UNDELIVERABLE","is_catchall_email":{"value":false}}`, VerdictInvalid},
		{`{"deliverability":"UNKNOWN"}`, VerdictCatchAll},
	}

	for _, tc := range cases {
		body := tc.body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("api_key") != "key1" {
				t.Errorf("missing api_key parameter")
			}
			w.Write([]byte(body))
		}))

		checker := New(testValidationConfig{baseURL: server.URL, apiKey: "key1"}, logger.New("development"))
		verdict, err := checker.Check(context.Background(), "probe@clinic.com")
		server.Close()
		if err != nil {
			t.Fatalf("body %s: %v", tc.body, err)
		}
		if verdict != tc.want {
			t.Errorf("body %s: expected %q, got %q", tc.body, tc.want, verdict)
		}
	}
}

func TestSendable_ProviderOutageDegradesToSendable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	checker := New(testValidationConfig{baseURL: server.URL, apiKey: "key1"}, logger.New("development"))
	sendable, err := checker.Sendable(context.Background(), "probe@clinic.com")
	if err == nil {
		t.Fatal("provider failure should surface as an error")
	}
	if !sendable {
		t.Fatal("provider failure must not block the send")
	}
}

func TestSendable_OnlyInvalidBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"deliverability":"UNDELIVERABLE"}`))
	}))
	defer server.Close()

	checker := New(testValidationConfig{baseURL: server.URL, apiKey: "key1"}, logger.New("development"))
	sendable, err := checker.Sendable(context.Background(), "dead@clinic.com")
	if err != nil {
		t.Fatalf("sendable: %v", err)
	}
	if sendable {
		t.Fatal("undeliverable address must block the send")
	}
}
