// Package acs provides a client for the ACS north-bound device API.
//
// # Operations
//
// - FetchAllDevices: full fleet snapshot for scans
// - FetchDevice: single device tree by ID
// - SubmitTask: queue a task, optionally requesting an immediate
//   connection to the device
//
// The client owns no protocol framing beyond the ACS's existing JSON task
// shapes; parameter values travel as [path, value, typeTag] triples.
package acs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// Config holds configuration for the ACS client.
type Config struct {
	BaseURL   string        // e.g. "http://acs.example.net:7557"
	Username  string        // Basic auth, optional
	Password  string        // Basic auth, optional
	Timeout   time.Duration // HTTP timeout for fetches (default: 30s)
	RateLimit int           // Requests per minute (default: 120)
}

// Client talks to the ACS API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	username    string
	password    string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new ACS client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = 120
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		username:    cfg.Username,
		password:    cfg.Password,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), 5),
		logger:      logger.With("component", "acs_client"),
	}
}

// Task is the body of a queued device task.
type Task struct {
	Name            string                `json:"name"`
	ParameterValues []types.TaskOperation `json:"parameterValues,omitempty"`
	ObjectName      string                `json:"objectName,omitempty"`
}

// TaskOptions control how a task submission behaves.
type TaskOptions struct {
	// ConnectionRequest asks the ACS to ping the device immediately instead
	// of waiting for its next periodic inform.
	ConnectionRequest bool
	// Timeout bounds the whole submission including the connection request.
	Timeout time.Duration
}

// taskResponse is the ACS's acknowledgment of a queued task.
type taskResponse struct {
	ID string `json:"_id"`
}

// FetchAllDevices retrieves the full device list.
func (c *Client) FetchAllDevices(ctx context.Context) ([]types.DeviceRecord, error) {
	body, err := c.get(ctx, "/devices/")
	if err != nil {
		return nil, err
	}

	var records []types.DeviceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal device list: %w", err)
	}
	return records, nil
}

// FetchDevice retrieves a single device tree by ACS ID.
func (c *Client) FetchDevice(ctx context.Context, deviceID string) (types.DeviceRecord, error) {
	query := fmt.Sprintf(`{"_id":%s}`, mustJSON(deviceID))
	body, err := c.get(ctx, "/devices/?query="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var records []types.DeviceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal device: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("device %s not found", deviceID)
	}
	return records[0], nil
}

// SubmitTask queues a task for a device and returns the ACS task ID.
func (c *Client) SubmitTask(ctx context.Context, deviceID string, task Task, opts TaskOptions) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/devices/%s/tasks", c.baseURL, url.PathEscape(deviceID))
	if opts.ConnectionRequest {
		endpoint += "?connection_request"
		if opts.Timeout > 0 {
			endpoint += "&timeout=" + strconv.FormatInt(opts.Timeout.Milliseconds(), 10)
		}
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit task %q: %w", task.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", c.readError(resp)
	}

	var ack taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		// Some ACS builds reply with an empty body on 202; the task was
		// still queued.
		c.logger.Debug("task response had no body", "device_id", deviceID, "task", task.Name)
	}

	c.logger.Debug("task submitted",
		"device_id", deviceID,
		"task", task.Name,
		"task_id", ack.ID,
		"connection_request", opts.ConnectionRequest,
	)
	return ack.ID, nil
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// readError extracts an error message from a failed response.
func (c *Client) readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("ACS request failed with status %d: %s", resp.StatusCode, string(body))
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
