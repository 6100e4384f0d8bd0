package acs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:  server.URL,
		Username: "admin",
		Password: "secret",
	}, testLogger())
}

func TestFetchAllDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "secret" {
			t.Error("missing or wrong basic auth")
		}
		io.WriteString(w, `[{"_id":"dev-1"},{"_id":"dev-2"}]`)
	}))
	defer server.Close()

	devices, err := newTestClient(server).FetchAllDevices(context.Background())
	if err != nil {
		t.Fatalf("FetchAllDevices: %v", err)
	}
	if len(devices) != 2 || devices[0].ID() != "dev-1" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestFetchDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query != `{"_id":"dev-1"}` {
			t.Errorf("query = %s", query)
		}
		io.WriteString(w, `[{"_id":"dev-1","_deviceId":{"_Manufacturer":"ZTE"}}]`)
	}))
	defer server.Close()

	device, err := newTestClient(server).FetchDevice(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("FetchDevice: %v", err)
	}
	if device.Manufacturer() != "ZTE" {
		t.Errorf("manufacturer = %q", device.Manufacturer())
	}
}

func TestFetchDeviceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	if _, err := newTestClient(server).FetchDevice(context.Background(), "gone"); err == nil {
		t.Fatal("expected not-found error for empty result")
	}
}

func TestSubmitTaskHinted(t *testing.T) {
	var gotURL string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"_id":"task-123"}`)
	}))
	defer server.Close()

	task := Task{
		Name: "setParameterValues",
		ParameterValues: []types.TaskOperation{
			{Path: "A.B.SSID", Value: "Home", ValueType: types.ValueTypeString},
		},
	}
	taskID, err := newTestClient(server).SubmitTask(context.Background(), "dev-1", task, TaskOptions{
		ConnectionRequest: true,
		Timeout:           3 * time.Second,
	})
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if taskID != "task-123" {
		t.Errorf("taskID = %q", taskID)
	}
	if !strings.Contains(gotURL, "/devices/dev-1/tasks") {
		t.Errorf("url = %s", gotURL)
	}
	if !strings.Contains(gotURL, "connection_request") || !strings.Contains(gotURL, "timeout=3000") {
		t.Errorf("url missing connection request hint: %s", gotURL)
	}

	var decoded struct {
		Name            string     `json:"name"`
		ParameterValues [][]string `json:"parameterValues"`
	}
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.Name != "setParameterValues" {
		t.Errorf("task name = %q", decoded.Name)
	}
	want := []string{"A.B.SSID", "Home", "xsd:string"}
	if len(decoded.ParameterValues) != 1 || len(decoded.ParameterValues[0]) != 3 {
		t.Fatalf("parameterValues = %v", decoded.ParameterValues)
	}
	for i, v := range want {
		if decoded.ParameterValues[0][i] != v {
			t.Errorf("triple[%d] = %q, want %q", i, decoded.ParameterValues[0][i], v)
		}
	}
}

func TestSubmitTaskPlainOmitsHint(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	// An empty 202 body is a valid acknowledgment.
	taskID, err := newTestClient(server).SubmitTask(context.Background(), "dev-1", Task{Name: "reboot"}, TaskOptions{})
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if taskID != "" {
		t.Errorf("taskID = %q, want empty for bodyless ack", taskID)
	}
	if strings.Contains(gotURL, "connection_request") {
		t.Errorf("plain submission must not carry the hint: %s", gotURL)
	}
}

func TestSubmitTaskErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "device did not respond")
	}))
	defer server.Close()

	_, err := newTestClient(server).SubmitTask(context.Background(), "dev-1", Task{Name: "reboot"}, TaskOptions{ConnectionRequest: true})
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "device did not respond") {
		t.Errorf("error = %v", err)
	}
}
