// Package metrics provides engine health reporting.
package metrics

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// CacheSizer reports the classification cache size.
type CacheSizer interface {
	Size() int
}

// ScanStatus is the outcome of the most recent run of one scan kind.
type ScanStatus struct {
	RanAt      time.Time `json:"ran_at"`
	Devices    int       `json:"devices"`
	Violations int       `json:"violations"`
	Error      string    `json:"error,omitempty"`
}

// EngineHealth is the health snapshot exposed through the service facade.
type EngineHealth struct {
	Status          string                             `json:"status"`
	UptimeSeconds   int64                              `json:"uptime_seconds"`
	Goroutines      int                                `json:"goroutines"`
	CPUPercent      float64                            `json:"cpu_percent"`
	MemoryMB        float64                            `json:"memory_mb"`
	ClassifiedCount int                                `json:"classified_count"`
	Scans           map[types.ThresholdKind]ScanStatus `json:"scans"`
}

// Collector gathers engine health with caching.
type Collector struct {
	classifications CacheSizer // may be nil
	startTime       time.Time

	mu            sync.RWMutex
	scans         map[types.ThresholdKind]ScanStatus
	cachedHealth  *EngineHealth
	cacheExpiry   time.Time
	cacheDuration time.Duration
}

// NewCollector creates a health collector.
func NewCollector(classifications CacheSizer) *Collector {
	return &Collector{
		classifications: classifications,
		startTime:       time.Now(),
		scans:           make(map[types.ThresholdKind]ScanStatus),
		cacheDuration:   30 * time.Second,
	}
}

// RecordScan stores the outcome of a fleet scan. Implements the monitor's
// ScanRecorder.
func (c *Collector) RecordScan(kind types.ThresholdKind, devices, violations int, err error) {
	status := ScanStatus{
		RanAt:      time.Now(),
		Devices:    devices,
		Violations: violations,
	}
	if err != nil {
		status.Error = err.Error()
	}

	c.mu.Lock()
	c.scans[kind] = status
	c.cachedHealth = nil
	c.mu.Unlock()
}

// Health returns the current engine health. Process metrics are cached for
// 30 seconds to avoid repeated proc sampling.
func (c *Collector) Health() EngineHealth {
	c.mu.RLock()
	if c.cachedHealth != nil && time.Now().Before(c.cacheExpiry) {
		health := *c.cachedHealth
		c.mu.RUnlock()
		return health
	}
	c.mu.RUnlock()

	health := c.collect()

	c.mu.Lock()
	c.cachedHealth = &health
	c.cacheExpiry = time.Now().Add(c.cacheDuration)
	c.mu.Unlock()

	return health
}

func (c *Collector) collect() EngineHealth {
	health := EngineHealth{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Scans:         make(map[types.ThresholdKind]ScanStatus),
	}

	if c.classifications != nil {
		health.ClassifiedCount = c.classifications.Size()
	}

	c.mu.RLock()
	for kind, status := range c.scans {
		health.Scans[kind] = status
		if status.Error != "" {
			health.Status = "degraded"
		}
	}
	c.mu.RUnlock()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			health.CPUPercent = cpu
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			health.MemoryMB = float64(mem.RSS) / (1024 * 1024)
		}
	}

	if health.CPUPercent > 90 {
		health.Status = "degraded"
	}
	return health
}
