package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebhookNotify(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := NewWebhook(WebhookConfig{URL: server.URL, Token: "tok-1"}, testLogger())
	err := webhook.Notify(context.Background(), "scan-abc", "2 device(s) degraded", types.PriorityHigh)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotAuth != "Bearer tok-1" {
		t.Errorf("authorization = %q", gotAuth)
	}

	var payload struct {
		ScanID   string `json:"scan_id"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ScanID != "scan-abc" {
		t.Errorf("scan_id = %q, want scan-abc", payload.ScanID)
	}
	if payload.Message != "2 device(s) degraded" || payload.Priority != "high" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestWebhookNotifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	webhook := NewWebhook(WebhookConfig{URL: server.URL}, testLogger())
	if err := webhook.Notify(context.Background(), "scan-abc", "msg", types.PriorityMedium); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestLogOnlyAlwaysSucceeds(t *testing.T) {
	l := NewLogOnly(testLogger())
	if err := l.Notify(context.Background(), "scan-abc", "msg", types.PriorityHigh); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}
