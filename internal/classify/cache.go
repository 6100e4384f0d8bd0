package classify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// TTL is how long a classification result is trusted before the device
// record is re-fetched.
const TTL = 30 * time.Minute

// DeviceFetcher retrieves a single device record from the ACS.
type DeviceFetcher interface {
	FetchDevice(ctx context.Context, deviceID string) (types.DeviceRecord, error)
}

type cacheEntry struct {
	vendor       types.VendorTag
	classifiedAt time.Time
}

// Cache memoizes device-id to vendor classifications so configuration
// requests don't pay a full record fetch every time.
//
// Expiry is lazy: entries are checked at read time and refreshed in place.
// Concurrent misses for the same device may each fetch independently; last
// writer wins, which is harmless because classification is deterministic for
// a given record.
type Cache struct {
	fetcher    DeviceFetcher
	classifier *Classifier
	logger     *slog.Logger

	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates a classification cache.
func NewCache(fetcher DeviceFetcher, classifier *Classifier, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger.With("component", "classify_cache"),
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

// Vendor returns the vendor tag for a device, classifying it if the cached
// entry is absent or older than TTL.
//
// A failed fetch caches a generic fallback entry: repeated configuration
// calls against an unreachable device should not hammer the ACS with lookups,
// and dispatching with generic paths beats blocking the caller.
func (c *Cache) Vendor(ctx context.Context, deviceID string) types.VendorTag {
	c.mu.RLock()
	entry, ok := c.entries[deviceID]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.classifiedAt) < TTL {
		return entry.vendor
	}

	vendor := types.VendorGeneric
	record, err := c.fetcher.FetchDevice(ctx, deviceID)
	if err != nil {
		c.logger.Warn("device fetch failed, caching generic fallback",
			"device_id", deviceID,
			"error", err,
		)
	} else {
		vendor = c.classifier.Classify(record)
	}

	c.mu.Lock()
	c.entries[deviceID] = cacheEntry{vendor: vendor, classifiedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("device classified",
		"device_id", deviceID,
		"vendor", vendor,
	)
	return vendor
}

// Size returns the number of cached entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops a device's cached classification.
func (c *Cache) Invalidate(deviceID string) {
	c.mu.Lock()
	delete(c.entries, deviceID)
	c.mu.Unlock()
}
