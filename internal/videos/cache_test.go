package videos

import (
	"context"
	"testing"
	"time"

	"github.com/clipmarket/client/internal/models"
)

type stubProvider struct {
	summary models.VideoSummary
	err     error
	calls   int
}

func (s *stubProvider) Lookup(context.Context, string) (models.VideoSummary, error) {
	s.calls++
	if s.err != nil {
		return models.VideoSummary{}, s.err
	}
	return s.summary, nil
}

func TestCachingProviderLookup(t *testing.T) {
	base := &stubProvider{summary: models.VideoSummary{ID: "v1", Title: "Test"}}
	cache := NewCachingProvider(base, time.Minute)

	ctx := context.Background()

	summary, err := cache.Lookup(ctx, "v1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if summary.Title != "Test" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	if _, err := cache.Lookup(ctx, "v1"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
}

func TestCachingProviderErrors(t *testing.T) {
	cache := NewCachingProvider(nil, time.Minute)
	if _, err := cache.Lookup(context.Background(), "v1"); err != ErrProviderUnavailable {
		t.Fatalf("expected provider unavailable got %v", err)
	}

	base := &stubProvider{err: ErrNotFound}
	cache = NewCachingProvider(base, time.Minute)
	if _, err := cache.Lookup(context.Background(), "v1"); err != ErrNotFound {
		t.Fatalf("expected not found got %v", err)
	}
	// Failures are not cached.
	if _, err := cache.Lookup(context.Background(), "v1"); err != ErrNotFound {
		t.Fatalf("expected not found got %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected failure to bypass cache got %d calls", base.calls)
	}
}

func TestCachingProviderExpiry(t *testing.T) {
	base := &stubProvider{summary: models.VideoSummary{ID: "v1"}}
	cache := NewCachingProvider(base, time.Millisecond)

	if _, err := cache.Lookup(context.Background(), "v1"); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := cache.Lookup(context.Background(), "v1"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestPayloadSummaryMediaRef(t *testing.T) {
	short := Payload{ID: "v1", Type: "short", FileURL: "file.mp4", VideoURL: "ignored"}
	if got := short.Summary(); got.Kind != models.KindShort || got.MediaRef != "file.mp4" {
		t.Fatalf("short mapped to %+v", got)
	}

	long := Payload{ID: "v2", Type: "long", VideoURL: "https://example.com/v2"}
	if got := long.Summary(); got.Kind != models.KindLong || got.MediaRef != "https://example.com/v2" {
		t.Fatalf("long mapped to %+v", got)
	}

	// Unknown kinds fall back to long-form handling.
	odd := Payload{ID: "v3", Type: "live", VideoURL: "u"}
	if got := odd.Summary(); got.Kind != models.KindLong {
		t.Fatalf("unknown kind mapped to %+v", got)
	}
}
