// Package service is the surface exposed to the admin and customer routes:
// classification, configuration dispatch, and read accessors that proxy the
// ACS with short-lived caching.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/internal/cache"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/classify"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/metrics"
	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

const (
	deviceListTTL = 30 * time.Second
	deviceTTL     = 10 * time.Second
)

// DeviceReader proxies ACS device reads.
type DeviceReader interface {
	FetchAllDevices(ctx context.Context) ([]types.DeviceRecord, error)
	FetchDevice(ctx context.Context, deviceID string) (types.DeviceRecord, error)
}

// ConfigDispatcher applies configuration changes to devices.
type ConfigDispatcher interface {
	SetFields(ctx context.Context, deviceID string, fields map[string]string) (*types.DispatchResult, error)
	Reboot(ctx context.Context, deviceID string) (*types.DispatchResult, error)
	FactoryReset(ctx context.Context, deviceID string) (*types.DispatchResult, error)
}

// Service composes the engine components behind one facade.
type Service struct {
	reader          DeviceReader
	dispatcher      ConfigDispatcher
	classifications *classify.Cache
	devCache        *cache.Cache // may be nil
	health          *metrics.Collector
	logger          *slog.Logger
}

// New creates the service facade. devCache may be nil to disable read caching.
func New(reader DeviceReader, dispatcher ConfigDispatcher, classifications *classify.Cache, devCache *cache.Cache, health *metrics.Collector, logger *slog.Logger) *Service {
	return &Service{
		reader:          reader,
		dispatcher:      dispatcher,
		classifications: classifications,
		devCache:        devCache,
		health:          health,
		logger:          logger.With("component", "service"),
	}
}

// Classify returns the vendor family for a device.
func (s *Service) Classify(ctx context.Context, deviceID string) types.VendorTag {
	return s.classifications.Vendor(ctx, deviceID)
}

// SetFields dispatches configuration changes and invalidates cached reads.
func (s *Service) SetFields(ctx context.Context, deviceID string, fields map[string]string) (*types.DispatchResult, error) {
	result, err := s.dispatcher.SetFields(ctx, deviceID, fields)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, deviceID)
	return result, nil
}

// Reboot queues a device reboot.
func (s *Service) Reboot(ctx context.Context, deviceID string) (*types.DispatchResult, error) {
	result, err := s.dispatcher.Reboot(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, deviceID)
	return result, nil
}

// FactoryReset queues a factory reset and drops the device's classification,
// since a wiped device may come back with different firmware defaults.
func (s *Service) FactoryReset(ctx context.Context, deviceID string) (*types.DispatchResult, error) {
	result, err := s.dispatcher.FactoryReset(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	s.classifications.Invalidate(deviceID)
	s.invalidate(ctx, deviceID)
	return result, nil
}

// Devices returns the fleet listing, cached briefly.
func (s *Service) Devices(ctx context.Context) ([]types.DeviceRecord, error) {
	if s.devCache != nil {
		var cached []types.DeviceRecord
		if hit, err := s.devCache.GetJSON(ctx, "devices:all", &cached); err == nil && hit {
			return cached, nil
		}
	}

	devices, err := s.reader.FetchAllDevices(ctx)
	if err != nil {
		return nil, err
	}

	if s.devCache != nil {
		if err := s.devCache.SetJSON(ctx, "devices:all", devices, deviceListTTL); err != nil {
			s.logger.Debug("device list cache write failed", "error", err)
		}
	}
	return devices, nil
}

// Device returns a single device tree, cached briefly.
func (s *Service) Device(ctx context.Context, deviceID string) (types.DeviceRecord, error) {
	key := "device:" + deviceID
	if s.devCache != nil {
		var cached types.DeviceRecord
		if hit, err := s.devCache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	device, err := s.reader.FetchDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if s.devCache != nil {
		if err := s.devCache.SetJSON(ctx, key, device, deviceTTL); err != nil {
			s.logger.Debug("device cache write failed", "device_id", deviceID, "error", err)
		}
	}
	return device, nil
}

// VirtualParameter reads a computed parameter from a device's tree.
func (s *Service) VirtualParameter(ctx context.Context, deviceID, name string) (string, error) {
	device, err := s.Device(ctx, deviceID)
	if err != nil {
		return "", err
	}
	value, ok := device.GetLeafValue("VirtualParameters." + name)
	if !ok {
		return "", fmt.Errorf("virtual parameter %q not present on %s", name, deviceID)
	}
	return value, nil
}

// Health returns the engine health snapshot.
func (s *Service) Health() metrics.EngineHealth {
	return s.health.Health()
}

func (s *Service) invalidate(ctx context.Context, deviceID string) {
	if s.devCache != nil {
		s.devCache.InvalidateDevice(ctx, deviceID)
	}
}
