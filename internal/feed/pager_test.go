package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/clipmarket/client/internal/videos"
)

type stubGateway struct {
	payloads []videos.Payload
	err      error
	calls    int
}

func (g *stubGateway) Get(_ context.Context, _ string, out any) error {
	g.calls++
	if g.err != nil {
		return g.err
	}
	payload, err := json.Marshal(g.payloads)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func feedOf(n int) []videos.Payload {
	payloads := make([]videos.Payload, 0, n)
	for i := 0; i < n; i++ {
		payloads = append(payloads, videos.Payload{
			ID:    fmt.Sprintf("v%d", i+1),
			Title: fmt.Sprintf("Clip #%d", i+1),
			Type:  "short",
		})
	}
	return payloads
}

func TestLoadRevealsFirstPage(t *testing.T) {
	pager := NewPager(&stubGateway{payloads: feedOf(10)}, 3, nil)

	if pager.State() != StateIdle {
		t.Fatalf("expected idle got %s", pager.State())
	}
	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if pager.State() != StateReady {
		t.Fatalf("expected ready got %s", pager.State())
	}
	if got := len(pager.VisibleSlice()); got != 3 {
		t.Fatalf("expected initial window of 3 got %d", got)
	}
}

func TestAdvanceIsMonotonicCappedAndIdempotent(t *testing.T) {
	pager := NewPager(&stubGateway{payloads: feedOf(10)}, 3, nil)
	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []int{6, 9, 10, 10, 10}
	for i, expected := range want {
		pager.Advance()
		if got := len(pager.VisibleSlice()); got != expected {
			t.Fatalf("advance %d: expected window %d got %d", i+1, expected, got)
		}
	}
	if !pager.Exhausted() {
		t.Fatal("expected exhausted feed")
	}
}

func TestVisibleSliceIsStablePrefix(t *testing.T) {
	pager := NewPager(&stubGateway{payloads: feedOf(7)}, 3, nil)
	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	before := pager.VisibleSlice()
	pager.Advance()
	after := pager.VisibleSlice()

	for i, video := range before {
		if after[i].ID != video.ID {
			t.Fatalf("revealed item %d moved from %s to %s", i, video.ID, after[i].ID)
		}
	}
}

func TestAdvanceOutsideReadyIsNoop(t *testing.T) {
	pager := NewPager(&stubGateway{payloads: feedOf(5)}, 3, nil)

	pager.Advance()
	if got := len(pager.VisibleSlice()); got != 0 {
		t.Fatalf("advance before load revealed %d items", got)
	}
}

func TestLoadFailureKeepsStaleWindowAndRetries(t *testing.T) {
	gw := &stubGateway{err: errors.New("boom")}
	pager := NewPager(gw, 3, nil)

	if err := pager.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if pager.State() != StateError {
		t.Fatalf("expected error state got %s", pager.State())
	}
	if pager.Err() == nil {
		t.Fatal("expected recorded error")
	}

	gw.err = nil
	gw.payloads = feedOf(4)
	if err := pager.Retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if pager.State() != StateReady {
		t.Fatalf("expected ready after retry got %s", pager.State())
	}
	if got := len(pager.VisibleSlice()); got != 3 {
		t.Fatalf("expected window 3 after retry got %d", got)
	}
}

func TestRetryOutsideErrorIsNoop(t *testing.T) {
	gw := &stubGateway{payloads: feedOf(4)}
	pager := NewPager(gw, 3, nil)
	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := pager.Retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("retry on a ready pager refetched, calls %d", gw.calls)
	}
}

func TestLoadIsCoalescedOnceReady(t *testing.T) {
	gw := &stubGateway{payloads: feedOf(4)}
	pager := NewPager(gw, 3, nil)

	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	pager.Advance()
	if err := pager.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}

	if gw.calls != 1 {
		t.Fatalf("ready pager refetched, calls %d", gw.calls)
	}
	if got := len(pager.VisibleSlice()); got != 4 {
		t.Fatalf("second load reset the window to %d", got)
	}
}
