package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher implements DeviceFetcher for testing.
type mockFetcher struct {
	calls  int
	record types.DeviceRecord
	err    error
}

func (m *mockFetcher) FetchDevice(_ context.Context, _ string) (types.DeviceRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func TestCacheHitWithinTTL(t *testing.T) {
	fetcher := &mockFetcher{record: record("000C-ZXHN-ABC123", "ZTE", "F670L")}
	cache := NewCache(fetcher, New(), testLogger())

	ctx := context.Background()
	if got := cache.Vendor(ctx, "000C-ZXHN-ABC123"); got != types.VendorZTE {
		t.Fatalf("Vendor = %s, want zte", got)
	}
	if got := cache.Vendor(ctx, "000C-ZXHN-ABC123"); got != types.VendorZTE {
		t.Fatalf("Vendor = %s, want zte", got)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (second lookup must hit cache)", fetcher.calls)
	}
}

func TestCacheExpiryTriggersRefetch(t *testing.T) {
	fetcher := &mockFetcher{record: record("000C-ZXHN-ABC123", "ZTE", "F670L")}
	cache := NewCache(fetcher, New(), testLogger())

	current := time.Now()
	cache.now = func() time.Time { return current }

	ctx := context.Background()
	cache.Vendor(ctx, "000C-ZXHN-ABC123")

	// Still fresh just under the TTL.
	current = current.Add(TTL - time.Minute)
	cache.Vendor(ctx, "000C-ZXHN-ABC123")
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1 before expiry", fetcher.calls)
	}

	// Stale one minute past the TTL.
	current = current.Add(2 * time.Minute)
	cache.Vendor(ctx, "000C-ZXHN-ABC123")
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 after expiry", fetcher.calls)
	}
}

func TestCacheFetchFailureCachesGeneric(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("device unreachable")}
	cache := NewCache(fetcher, New(), testLogger())

	ctx := context.Background()
	if got := cache.Vendor(ctx, "gone-device"); got != types.VendorGeneric {
		t.Fatalf("Vendor = %s, want generic on fetch failure", got)
	}

	// The fallback entry must suppress retries within the TTL window.
	cache.Vendor(ctx, "gone-device")
	cache.Vendor(ctx, "gone-device")
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (failures must not retry within TTL)", fetcher.calls)
	}
}

func TestCacheInvalidate(t *testing.T) {
	fetcher := &mockFetcher{record: record("000C-ZXHN-ABC123", "ZTE", "F670L")}
	cache := NewCache(fetcher, New(), testLogger())

	ctx := context.Background()
	cache.Vendor(ctx, "000C-ZXHN-ABC123")
	if cache.Size() != 1 {
		t.Fatalf("Size = %d, want 1", cache.Size())
	}

	cache.Invalidate("000C-ZXHN-ABC123")
	if cache.Size() != 0 {
		t.Fatalf("Size = %d, want 0 after invalidate", cache.Size())
	}

	cache.Vendor(ctx, "000C-ZXHN-ABC123")
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 after invalidation", fetcher.calls)
	}
}
