package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

type memoryCache struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	if m.failGet {
		return "", errors.New("cache down")
	}
	return m.values[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.failSet {
		return errors.New("cache down")
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestCached(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("queries only misses and stores results", func(t *testing.T) {
		cache := newMemoryCache()
		cache.values[cacheKey("iphone_17")] = cachedInStock
		next := &stubChecker{availability: []domain.InventoryAvailability{
			{SkuCode: "iphone_17_black", InStock: false},
		}}

		got, err := Cached(next, cache, 2*time.Second, logger).CheckStock(context.Background(), []string{"iphone_17", "iphone_17_black", "unknown"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(next.calls) != 1 || !reflect.DeepEqual(next.calls[0], []string{"iphone_17_black", "unknown"}) {
			t.Errorf("expected lookup of misses only, got %v", next.calls)
		}

		want := []domain.InventoryAvailability{
			{SkuCode: "iphone_17", InStock: true},
			{SkuCode: "iphone_17_black", InStock: false},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}

		if cache.values[cacheKey("iphone_17_black")] != cachedOutOfStock {
			t.Errorf("expected out-of-stock entry to be cached")
		}
		if cache.ttls[cacheKey("iphone_17_black")] != 2*time.Second {
			t.Errorf("expected ttl 2s, got %s", cache.ttls[cacheKey("iphone_17_black")])
		}
		if _, ok := cache.values[cacheKey("unknown")]; ok {
			t.Error("expected unreported code not to be cached")
		}
	})

	t.Run("all hits skip the lookup", func(t *testing.T) {
		cache := newMemoryCache()
		cache.values[cacheKey("iphone_17")] = cachedInStock
		next := &stubChecker{}

		got, err := Cached(next, cache, time.Second, logger).CheckStock(context.Background(), []string{"iphone_17"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(next.calls) != 0 {
			t.Errorf("expected no lookups, got %d", len(next.calls))
		}
		if len(got) != 1 || !got[0].InStock {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		cache := newMemoryCache()
		cache.failGet = true
		cache.failSet = true
		next := &stubChecker{availability: []domain.InventoryAvailability{{SkuCode: "iphone_17", InStock: true}}}

		got, err := Cached(next, cache, time.Second, logger).CheckStock(context.Background(), []string{"iphone_17"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || !got[0].InStock {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("lookup errors propagate", func(t *testing.T) {
		lookupErr := errors.New("timeout")
		next := &stubChecker{err: lookupErr}

		_, err := Cached(next, newMemoryCache(), time.Second, logger).CheckStock(context.Background(), []string{"iphone_17"})
		if !errors.Is(err, lookupErr) {
			t.Errorf("expected %v, got %v", lookupErr, err)
		}
	})
}

func TestCached_TracesOnlyUpstreamLookups(t *testing.T) {
	recorder := recordSpans(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cache := newMemoryCache()
	cache.values[cacheKey("iphone_17")] = cachedInStock
	next := &stubChecker{availability: []domain.InventoryAvailability{
		{SkuCode: "iphone_17_black", InStock: false},
	}}
	checker := Cached(Traced(next), cache, time.Minute, logger)

	if _, err := checker.CheckStock(context.Background(), []string{"iphone_17"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(recorder.Ended()); n != 0 {
		t.Fatalf("expected no lookup span for a cache hit, got %d", n)
	}

	if _, err := checker.CheckStock(context.Background(), []string{"iphone_17", "iphone_17_black"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 lookup span, got %d", len(spans))
	}
	count, ok := spanAttr(spans[0].Attributes(), "inventory.sku_count")
	if !ok || count.AsInt64() != 1 {
		t.Errorf("expected inventory.sku_count 1, got %v", count)
	}
}
