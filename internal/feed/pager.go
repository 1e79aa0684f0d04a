// Package feed fetches the discovery video list and controls how much
// of it is revealed to the user. The backend returns the whole feed in
// one response; pagination is purely client-side, driven by a sentinel
// element scrolling into view.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clipmarket/client/internal/logging"
	"github.com/clipmarket/client/internal/models"
	"github.com/clipmarket/client/internal/videos"
)

// State is the pager's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// DefaultPageSize is how many items each reveal step exposes.
const DefaultPageSize = 3

// Gateway is the slice of the API client the pager needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
}

// Pager owns the feed window: the fetched sequence plus the count of
// items currently revealed. The revealed prefix is stable: items never
// change position or disappear within a session.
type Pager struct {
	gateway  Gateway
	logger   *slog.Logger
	pageSize int

	mu       sync.Mutex
	state    State
	items    []models.VideoSummary
	revealed int
	lastErr  error
}

// NewPager constructs an idle pager. A non-positive pageSize falls back
// to DefaultPageSize.
func NewPager(gateway Gateway, pageSize int, logger *slog.Logger) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{
		gateway:  gateway,
		logger:   logger,
		pageSize: pageSize,
		state:    StateIdle,
	}
}

// Load fetches the feed once and resets the reveal window to the first
// page. Calls while a load is in flight, or after the feed is already
// ready, are coalesced into no-ops. On failure the pager enters the
// error state but keeps whatever window was last revealed, so the UI
// shows stale-but-visible content next to the retry affordance.
func (p *Pager) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateLoading || p.state == StateReady {
		p.mu.Unlock()
		return nil
	}
	p.state = StateLoading
	p.mu.Unlock()

	ctx, op := logging.StartOp(ctx, "feed.load")

	var payloads []videos.Payload
	if err := p.gateway.Get(ctx, "/videos/feed", &payloads); err != nil {
		p.mu.Lock()
		p.state = StateError
		p.lastErr = err
		p.mu.Unlock()
		op.End(err)
		return err
	}

	items := make([]models.VideoSummary, 0, len(payloads))
	for _, payload := range payloads {
		items = append(items, payload.Summary())
	}

	p.mu.Lock()
	p.items = items
	p.revealed = min(p.pageSize, len(items))
	p.state = StateReady
	p.lastErr = nil
	p.mu.Unlock()

	op.End(nil)
	return nil
}

// Advance reveals the next page in response to the sentinel becoming
// visible. It only acts in the ready state, never exceeds the sequence
// length, and is idempotent once the feed is exhausted.
func (p *Pager) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateReady {
		return
	}
	p.revealed = min(p.revealed+p.pageSize, len(p.items))
}

// Retry re-attempts the initial load after a failure. It is a no-op in
// any state other than error.
func (p *Pager) Retry(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateError {
		p.mu.Unlock()
		return nil
	}
	p.state = StateIdle
	p.mu.Unlock()

	return p.Load(ctx)
}

// VisibleSlice returns a copy of the currently revealed prefix.
func (p *Pager) VisibleSlice() []models.VideoSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.VideoSummary(nil), p.items[:p.revealed]...)
}

// State returns the pager's lifecycle state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the failure that moved the pager into the error state.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Exhausted reports whether every fetched item has been revealed.
func (p *Pager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StateReady && p.revealed == len(p.items)
}
