package monitor

import (
	"context"
	"strings"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

// subscriberResolver resolves a human-readable subscriber ID for a device
// during alerting. Resolution order: WAN PPP username, "pppoe:" tag, then a
// comment match against the subscriber list. The list is fetched lazily at
// most once per scan.
type subscriberResolver struct {
	monitor *Monitor
	fetched bool
	failed  bool
	records []types.SubscriberRecord
}

func (m *Monitor) newSubscriberResolver() *subscriberResolver {
	return &subscriberResolver{monitor: m}
}

func (r *subscriberResolver) resolve(ctx context.Context, device types.DeviceRecord) string {
	if username, ok := device.FirstLeaf(pppUsernamePaths...); ok {
		return username
	}

	for _, tag := range device.Tags() {
		if strings.HasPrefix(tag, pppoeTagPrefix) {
			return strings.TrimPrefix(tag, pppoeTagPrefix)
		}
	}

	return r.lookupByComment(ctx, device)
}

// lookupByComment matches subscriber comments against the device serial or
// the serial fragment of its ACS ID.
func (r *subscriberResolver) lookupByComment(ctx context.Context, device types.DeviceRecord) string {
	records := r.load(ctx)
	if len(records) == 0 {
		return ""
	}

	fragments := make([]string, 0, 2)
	if serial := device.SerialNumber(); serial != "" {
		fragments = append(fragments, strings.ToLower(serial))
	}
	// ACS IDs embed the serial as their last dash-separated segment.
	if parts := strings.Split(device.ID(), "-"); len(parts) > 1 {
		if frag := strings.ToLower(parts[len(parts)-1]); frag != "" {
			fragments = append(fragments, frag)
		}
	}

	for _, fragment := range fragments {
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Comment), fragment) {
				return record.Name
			}
		}
	}
	return ""
}

func (r *subscriberResolver) load(ctx context.Context) []types.SubscriberRecord {
	if r.fetched || r.failed {
		return r.records
	}
	if r.monitor.subscribers == nil {
		r.failed = true
		return nil
	}

	records, err := r.monitor.subscribers.ListSubscriberRecords(ctx)
	if err != nil {
		// Degrade to the other resolution sources for the rest of the scan.
		r.monitor.logger.Warn("subscriber list fetch failed", "error", err)
		r.failed = true
		return nil
	}
	r.fetched = true
	r.records = records
	return r.records
}
