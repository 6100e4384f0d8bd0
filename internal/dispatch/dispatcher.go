// Package dispatch turns abstract configuration intents into ACS tasks.
//
// # Strategy
//
// Small batches for a known vendor go out in "fast" mode: the operation list
// is split into two chunks submitted concurrently, each racing a short
// connection-request window. Everything else goes out as a single "standard"
// task. Both shapes try a connection-request-hinted submission first and fall
// back once to a plain queue insert, so a device that cannot be reached
// immediately still picks the change up on its next inform.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/internal/acs"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/paths"
	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

const (
	// fastMaxOperations is the largest batch eligible for chunked dispatch.
	fastMaxOperations = 10

	fastTimeout     = 3 * time.Second
	standardTimeout = 5 * time.Second
	refreshTimeout  = 2 * time.Second

	// refreshLatencyTrigger: a fast dispatch slower than this still gets a
	// follow-up refresh, since the device likely wasn't reached inline.
	refreshLatencyTrigger = 2000 * time.Millisecond
)

// Legacy literal keys that predate band-specific fields. They cannot name a
// band, so the engine writes both radios and suffixes the 5GHz SSID value.
const (
	legacyKeySSID     = "ssid"
	legacyKeyPassword = "password"
)

// TaskSubmitter queues tasks against the ACS.
type TaskSubmitter interface {
	SubmitTask(ctx context.Context, deviceID string, task acs.Task, opts acs.TaskOptions) (string, error)
}

// VendorResolver resolves a device's vendor family, typically through the
// classification cache.
type VendorResolver interface {
	Vendor(ctx context.Context, deviceID string) types.VendorTag
}

// Error is the only failure kind surfaced to dispatch callers. It carries
// diagnostics for the operator-facing error message.
type Error struct {
	DeviceID   string
	Vendor     types.VendorTag
	Operations int
	Elapsed    time.Duration
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch to %s failed (vendor=%s, operations=%d, elapsed=%s): %v",
		e.DeviceID, e.Vendor, e.Operations, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher expands logical fields into parameter operations and submits
// them with the adaptive strategy.
type Dispatcher struct {
	submitter TaskSubmitter
	vendors   VendorResolver
	logger    *slog.Logger
}

// New creates a dispatcher.
func New(submitter TaskSubmitter, vendors VendorResolver, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		submitter: submitter,
		vendors:   vendors,
		logger:    logger.With("component", "dispatcher"),
	}
}

// SetFields applies a set of logical field / literal path values to a device.
// It fails only when the ACS rejects both the hinted and the fallback
// submission for some task.
func (d *Dispatcher) SetFields(ctx context.Context, deviceID string, fields map[string]string) (*types.DispatchResult, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("set fields on %s: empty field map", deviceID)
	}

	start := time.Now()

	vendor := d.vendors.Vendor(ctx, deviceID)
	ops := expandFields(vendor, fields)

	strategy := types.StrategyStandard
	if vendor != types.VendorGeneric && len(ops) <= fastMaxOperations {
		strategy = types.StrategyFast
	}

	var (
		taskID string
		err    error
	)
	switch strategy {
	case types.StrategyFast:
		taskID, err = d.submitChunked(ctx, deviceID, ops)
	default:
		taskID, err = d.submitWithFallback(ctx, deviceID, acs.Task{
			Name:            "setParameterValues",
			ParameterValues: ops,
		}, standardTimeout)
	}

	elapsed := time.Since(start)
	if err != nil {
		return nil, &Error{
			DeviceID:   deviceID,
			Vendor:     vendor,
			Operations: len(ops),
			Elapsed:    elapsed,
			Err:        err,
		}
	}

	// Fast dispatches that completed quickly already reached the device; a
	// refresh would only add load.
	if strategy == types.StrategyStandard || elapsed > refreshLatencyTrigger {
		d.refreshWiFiSubtree(ctx, deviceID)
	}

	d.logger.Info("fields dispatched",
		"device_id", deviceID,
		"vendor", vendor,
		"operations", len(ops),
		"strategy", strategy,
		"elapsed", elapsed,
	)

	return &types.DispatchResult{
		Success:    true,
		Vendor:     vendor,
		TaskID:     taskID,
		Operations: len(ops),
		ElapsedMs:  elapsed.Milliseconds(),
		Strategy:   strategy,
	}, nil
}

// Reboot queues a reboot, hinted then plain.
func (d *Dispatcher) Reboot(ctx context.Context, deviceID string) (*types.DispatchResult, error) {
	start := time.Now()
	vendor := d.vendors.Vendor(ctx, deviceID)

	taskID, err := d.submitWithFallback(ctx, deviceID, acs.Task{Name: "reboot"}, standardTimeout)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &Error{DeviceID: deviceID, Vendor: vendor, Operations: 1, Elapsed: elapsed, Err: err}
	}

	d.logger.Info("reboot dispatched", "device_id", deviceID, "vendor", vendor, "elapsed", elapsed)
	return &types.DispatchResult{
		Success:    true,
		Vendor:     vendor,
		TaskID:     taskID,
		Operations: 1,
		ElapsedMs:  elapsed.Milliseconds(),
		Strategy:   types.StrategyStandard,
	}, nil
}

// FactoryReset queues a factory reset. The submission is deliberately not
// connection-request-hinted: wiping the device the instant an operator clicks
// is worse than letting it pick the task up on its next inform.
func (d *Dispatcher) FactoryReset(ctx context.Context, deviceID string) (*types.DispatchResult, error) {
	start := time.Now()
	vendor := d.vendors.Vendor(ctx, deviceID)

	taskID, err := d.submitter.SubmitTask(ctx, deviceID, acs.Task{Name: "factoryReset"}, acs.TaskOptions{
		Timeout: standardTimeout,
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, &Error{DeviceID: deviceID, Vendor: vendor, Operations: 1, Elapsed: elapsed, Err: err}
	}

	d.logger.Info("factory reset dispatched", "device_id", deviceID, "vendor", vendor)
	return &types.DispatchResult{
		Success:    true,
		Vendor:     vendor,
		TaskID:     taskID,
		Operations: 1,
		ElapsedMs:  elapsed.Milliseconds(),
		Strategy:   types.StrategyStandard,
	}, nil
}

// expandFields resolves each entry to concrete parameter operations. Keys are
// processed in sorted order so a given request always yields the same batch.
func expandFields(vendor types.VendorTag, fields map[string]string) []types.TaskOperation {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ops []types.TaskOperation
	appendSet := func(set paths.PathSet, value string) {
		for _, path := range set {
			ops = append(ops, types.TaskOperation{
				Path:      path,
				Value:     value,
				ValueType: types.ValueTypeString,
			})
		}
	}

	for _, key := range keys {
		value := fields[key]
		field := types.LogicalField(key)
		switch {
		case types.IsWiFiField(field):
			appendSet(paths.Resolve(vendor, field), value)
		case key == legacyKeySSID:
			// Band unknown: write both radios, suffixing the 5GHz copy so the
			// networks stay distinguishable.
			appendSet(paths.Resolve(vendor, types.FieldSSID24), value)
			appendSet(paths.Resolve(vendor, types.FieldSSID5), value+"-5G")
		case key == legacyKeyPassword:
			appendSet(paths.Resolve(vendor, types.FieldPassword24), value)
			appendSet(paths.Resolve(vendor, types.FieldPassword5), value)
		default:
			// Literal parameter path, passed through unchanged.
			ops = append(ops, types.TaskOperation{
				Path:      key,
				Value:     value,
				ValueType: types.ValueTypeString,
			})
		}
	}
	return ops
}

// submitChunked splits the batch into two contiguous chunks and submits them
// concurrently. Both must succeed; the first chunk's task ID is surfaced.
func (d *Dispatcher) submitChunked(ctx context.Context, deviceID string, ops []types.TaskOperation) (string, error) {
	half := (len(ops) + 1) / 2
	chunks := [][]types.TaskOperation{ops[:half], ops[half:]}

	type chunkResult struct {
		index  int
		taskID string
		err    error
	}
	results := make(chan chunkResult, len(chunks))

	submitted := 0
	for i, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		submitted++
		go func(index int, chunk []types.TaskOperation) {
			taskID, err := d.submitWithFallback(ctx, deviceID, acs.Task{
				Name:            "setParameterValues",
				ParameterValues: chunk,
			}, fastTimeout)
			results <- chunkResult{index: index, taskID: taskID, err: err}
		}(i, chunk)
	}

	var firstTaskID string
	var firstErr error
	for i := 0; i < submitted; i++ {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("chunk %d: %w", res.index+1, res.err)
		}
		if res.index == 0 {
			firstTaskID = res.taskID
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return firstTaskID, nil
}

// submitWithFallback attempts a connection-request-hinted submission and, on
// failure, retries exactly once as a plain queue insert.
func (d *Dispatcher) submitWithFallback(ctx context.Context, deviceID string, task acs.Task, timeout time.Duration) (string, error) {
	taskID, err := d.submitter.SubmitTask(ctx, deviceID, task, acs.TaskOptions{
		ConnectionRequest: true,
		Timeout:           timeout,
	})
	if err == nil {
		return taskID, nil
	}

	d.logger.Warn("hinted submission failed, retrying without connection request",
		"device_id", deviceID,
		"task", task.Name,
		"error", err,
	)

	taskID, err = d.submitter.SubmitTask(ctx, deviceID, task, acs.TaskOptions{
		Timeout: timeout,
	})
	if err != nil {
		return "", fmt.Errorf("both hinted and plain submissions failed: %w", err)
	}
	return taskID, nil
}

// refreshWiFiSubtree queues a best-effort refresh so the ACS re-polls the
// Wi-Fi configuration sooner. Failures never fail the dispatch.
func (d *Dispatcher) refreshWiFiSubtree(ctx context.Context, deviceID string) {
	_, err := d.submitter.SubmitTask(ctx, deviceID, acs.Task{
		Name:       "refreshObject",
		ObjectName: paths.WiFiSubtree,
	}, acs.TaskOptions{Timeout: refreshTimeout})
	if err != nil {
		d.logger.Debug("refresh task failed", "device_id", deviceID, "error", err)
	}
}
