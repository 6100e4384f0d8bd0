// Package monitor provides the recurring fleet health scans.
//
// Two independent jobs run on their own timers: a signal scan flagging
// degraded optical receive power, and a liveness scan flagging devices that
// stopped reporting. Each scan walks the whole fleet, tolerates per-device
// evaluation errors, and sends at most one aggregated notification.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// rxPowerPaths are the ordered candidates for optical receive power: the
// computed virtual parameter first, then the vendor-specific raw paths.
var rxPowerPaths = []string{
	"VirtualParameters.RXPower",
	"InternetGatewayDevice.WANDevice.1.X_CT-COM_GponInterfaceConfig.RXPower",
	"InternetGatewayDevice.WANDevice.1.X_CT-COM_EponInterfaceConfig.RXPower",
	"InternetGatewayDevice.WANDevice.1.X_ZTE-COM_WANPONInterfaceConfig.RXPower",
	"InternetGatewayDevice.WANDevice.1.X_FH_GponInterfaceConfig.RXPower",
}

// pppUsernamePaths are the ordered candidates for the WAN PPP username.
var pppUsernamePaths = []string{
	"VirtualParameters.pppoeUsername",
	"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username",
	"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.2.WANPPPConnection.1.Username",
}

const pppoeTagPrefix = "pppoe:"

// FleetFetcher retrieves the full device list from the ACS.
type FleetFetcher interface {
	FetchAllDevices(ctx context.Context) ([]types.DeviceRecord, error)
}

// Notifier delivers an aggregated alert to a human channel. The scan ID lets
// operators correlate an alert with the scan's log lines.
type Notifier interface {
	Notify(ctx context.Context, scanID, message string, priority types.Priority) error
}

// SubscriberLookup lists PPPoE subscriber records for the comment-matching
// fallback during alerting.
type SubscriberLookup interface {
	ListSubscriberRecords(ctx context.Context) ([]types.SubscriberRecord, error)
}

// ScanRecorder receives scan outcomes for health reporting. May be nil.
type ScanRecorder interface {
	RecordScan(kind types.ThresholdKind, devices, violations int, err error)
}

// JobConfig configures one recurring scan.
type JobConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Config holds configuration for the fleet monitor.
type Config struct {
	// StartupDelay defers both jobs after process boot.
	StartupDelay time.Duration

	SignalScan   JobConfig
	LivenessScan JobConfig

	// SignalThresholdDBm flags optical receive power below this value.
	SignalThresholdDBm float64

	// LivenessThresholdHours flags devices silent for longer than this.
	LivenessThresholdHours float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		StartupDelay:           5 * time.Minute,
		SignalScan:             JobConfig{Enabled: true, Interval: 30 * time.Minute},
		LivenessScan:           JobConfig{Enabled: true, Interval: time.Hour},
		SignalThresholdDBm:     -27,
		LivenessThresholdHours: 24,
	}
}

// Monitor owns the two scan loops.
type Monitor struct {
	fetcher     FleetFetcher
	notifier    Notifier
	subscribers SubscriberLookup
	recorder    ScanRecorder
	config      Config
	logger      *slog.Logger

	now    func() time.Time
	stopCh chan struct{}
}

// New creates a fleet monitor. subscribers and recorder may be nil.
func New(fetcher FleetFetcher, notifier Notifier, subscribers SubscriberLookup, recorder ScanRecorder, config Config, logger *slog.Logger) *Monitor {
	return &Monitor{
		fetcher:     fetcher,
		notifier:    notifier,
		subscribers: subscribers,
		recorder:    recorder,
		config:      config,
		logger:      logger.With("component", "fleet_monitor"),
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the enabled scan loops in goroutines.
func (m *Monitor) Start(ctx context.Context) {
	if m.config.SignalScan.Enabled {
		go m.runLoop(ctx, "signal_scan", m.config.SignalScan.Interval, m.RunSignalScan)
	}
	if m.config.LivenessScan.Enabled {
		go m.runLoop(ctx, "liveness_scan", m.config.LivenessScan.Interval, m.RunLivenessScan)
	}
}

// Stop signals all loops to stop.
func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) runLoop(ctx context.Context, name string, interval time.Duration, scan func(context.Context) error) {
	m.logger.Info("scan loop scheduled",
		"job", name,
		"interval", interval,
		"startup_delay", m.config.StartupDelay,
	)

	// Defer past process boot so scans don't compete with startup traffic.
	select {
	case <-ctx.Done():
		return
	case <-m.stopCh:
		return
	case <-time.After(m.config.StartupDelay):
	}

	if err := scan(ctx); err != nil {
		m.logger.Error("scan failed", "job", name, "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("scan loop stopping (context cancelled)", "job", name)
			return
		case <-m.stopCh:
			m.logger.Info("scan loop stopping (stop signal)", "job", name)
			return
		case <-ticker.C:
			// A failed tick is abandoned; the next tick retries on its own.
			if err := scan(ctx); err != nil {
				m.logger.Error("scan failed", "job", name, "error", err)
			}
		}
	}
}

// RunSignalScan walks the fleet for degraded optical receive power and sends
// one high-priority notification when any device is below threshold.
func (m *Monitor) RunSignalScan(ctx context.Context) error {
	scanID := uuid.New().String()
	start := m.now()

	devices, err := m.fetcher.FetchAllDevices(ctx)
	if err != nil {
		m.record(types.ThresholdSignal, 0, 0, err)
		return fmt.Errorf("fetch device list: %w", err)
	}

	resolver := m.newSubscriberResolver()
	group := types.AlertGroup{Kind: types.ThresholdSignal}

	for _, device := range devices {
		raw, ok := device.FirstLeaf(rxPowerPaths...)
		if !ok {
			continue
		}
		power, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			m.logger.Debug("unparseable rx power, skipping device",
				"scan_id", scanID,
				"device_id", device.ID(),
				"value", raw,
			)
			continue
		}
		if power >= m.config.SignalThresholdDBm {
			continue
		}

		last, _ := device.LastInform()
		group.Devices = append(group.Devices, types.DeviceAlertInfo{
			DeviceID:     device.ID(),
			SerialNumber: device.SerialNumber(),
			SubscriberID: resolver.resolve(ctx, device),
			RXPower:      power,
			LastInform:   last,
		})
	}

	m.record(types.ThresholdSignal, len(devices), len(group.Devices), nil)
	m.logger.Info("signal scan complete",
		"scan_id", scanID,
		"devices", len(devices),
		"violations", len(group.Devices),
		"elapsed", m.now().Sub(start),
	)

	if len(group.Devices) == 0 {
		return nil
	}
	return m.sendAlert(ctx, scanID, group)
}

// RunLivenessScan walks the fleet for devices that stopped reporting and
// sends one medium-priority notification when any are stale.
func (m *Monitor) RunLivenessScan(ctx context.Context) error {
	scanID := uuid.New().String()
	start := m.now()

	devices, err := m.fetcher.FetchAllDevices(ctx)
	if err != nil {
		m.record(types.ThresholdLiveness, 0, 0, err)
		return fmt.Errorf("fetch device list: %w", err)
	}

	threshold := time.Duration(m.config.LivenessThresholdHours * float64(time.Hour))
	resolver := m.newSubscriberResolver()
	group := types.AlertGroup{Kind: types.ThresholdLiveness}

	for _, device := range devices {
		last, ok := device.LastInform()
		var offline time.Duration
		if ok {
			offline = m.now().Sub(last)
			if offline <= threshold {
				continue
			}
		}

		group.Devices = append(group.Devices, types.DeviceAlertInfo{
			DeviceID:     device.ID(),
			SerialNumber: device.SerialNumber(),
			SubscriberID: resolver.resolve(ctx, device),
			OfflineHours: offline.Hours(),
			LastInform:   last,
		})
	}

	m.record(types.ThresholdLiveness, len(devices), len(group.Devices), nil)
	m.logger.Info("liveness scan complete",
		"scan_id", scanID,
		"devices", len(devices),
		"violations", len(group.Devices),
		"elapsed", m.now().Sub(start),
	)

	if len(group.Devices) == 0 {
		return nil
	}
	return m.sendAlert(ctx, scanID, group)
}

func (m *Monitor) record(kind types.ThresholdKind, devices, violations int, err error) {
	if m.recorder != nil {
		m.recorder.RecordScan(kind, devices, violations, err)
	}
}

// sendAlert formats and delivers one aggregated message for an alert group.
func (m *Monitor) sendAlert(ctx context.Context, scanID string, group types.AlertGroup) error {
	var (
		message  string
		priority types.Priority
	)
	switch group.Kind {
	case types.ThresholdSignal:
		message = formatSignalAlert(group, m.config.SignalThresholdDBm)
		priority = types.PriorityHigh
	default:
		message = formatLivenessAlert(group, m.config.LivenessThresholdHours)
		priority = types.PriorityMedium
	}

	if err := m.notifier.Notify(ctx, scanID, message, priority); err != nil {
		return fmt.Errorf("send %s alert: %w", group.Kind, err)
	}
	m.logger.Info("alert sent",
		"scan_id", scanID,
		"kind", group.Kind,
		"devices", len(group.Devices),
		"priority", priority,
	)
	return nil
}

func formatSignalAlert(group types.AlertGroup, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optical signal below %.1f dBm on %d device(s):\n", threshold, len(group.Devices))
	for _, d := range group.Devices {
		fmt.Fprintf(&b, "- %s (sn=%s, subscriber=%s): %.2f dBm, last contact %s\n",
			d.DeviceID, orUnknown(d.SerialNumber), orUnknown(d.SubscriberID),
			d.RXPower, formatLastInform(d.LastInform))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLivenessAlert(group types.AlertGroup, thresholdHours float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d device(s) silent for more than %.0f hours:\n", len(group.Devices), thresholdHours)
	for _, d := range group.Devices {
		offline := "unknown duration"
		if d.OfflineHours > 0 {
			offline = fmt.Sprintf("%.1f hours", d.OfflineHours)
		}
		fmt.Fprintf(&b, "- %s (sn=%s, subscriber=%s): offline %s, last contact %s\n",
			d.DeviceID, orUnknown(d.SerialNumber), orUnknown(d.SubscriberID),
			offline, formatLastInform(d.LastInform))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func formatLastInform(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
