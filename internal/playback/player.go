// Package playback drives short-video autoplay from viewport
// visibility. Each rendered card owns one Player; cards do not
// coordinate, so two cards that both satisfy the threshold during a
// fast transition may legitimately play at the same time, exactly as
// the platform behaves in the browser.
package playback

import (
	"log/slog"
	"sync"
)

// State is the per-card playback state.
type State string

const (
	StatePaused  State = "paused"
	StatePlaying State = "playing"
)

// DefaultThreshold is the fraction of the card that must intersect the
// viewport before it counts as visible for autoplay.
const DefaultThreshold = 0.7

// MediaElement is the handle a Player commands. Play reports autoplay
// rejections; Pause cannot fail.
type MediaElement interface {
	Play() error
	Pause()
}

// Player is the visibility-driven state machine for one card. It is
// attached when the card mounts and must be closed when the card
// unmounts so no visibility callbacks outlive it.
type Player struct {
	media     MediaElement
	threshold float64
	logger    *slog.Logger

	mu      sync.Mutex
	visible bool
	state   State
	closed  bool
}

// NewPlayer constructs a paused player for the given media element.
// Thresholds outside (0, 1] fall back to DefaultThreshold.
func NewPlayer(media MediaElement, threshold float64, logger *slog.Logger) *Player {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		media:     media,
		threshold: threshold,
		logger:    logger,
		state:     StatePaused,
	}
}

// Observe feeds the player the card's current intersection ratio. Only
// threshold crossings act on the media element: entering visibility
// starts playback, leaving it forces a pause even after a manual
// toggle. Visibility is authoritative on exit.
func (p *Player) Observe(ratio float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	visible := ratio >= p.threshold
	if visible == p.visible {
		return
	}
	p.visible = visible

	if visible {
		if p.state == StatePaused {
			p.playLocked()
		}
		return
	}

	if p.state == StatePlaying {
		p.media.Pause()
		p.state = StatePaused
	}
}

// Toggle flips playback in response to a user tap, regardless of
// current visibility.
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	if p.state == StatePlaying {
		p.media.Pause()
		p.state = StatePaused
		return
	}
	p.playLocked()
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Visible reports whether the card last satisfied the threshold.
func (p *Player) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Close detaches the player from its card. Subsequent Observe and
// Toggle calls are no-ops; the media element is not touched because the
// card owning it is being torn down.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// playLocked starts playback, swallowing autoplay rejections: the state
// still reports playing optimistically, the UI must not assume frames
// are actually advancing. Retrying here would fight the media API.
func (p *Player) playLocked() {
	if err := p.media.Play(); err != nil {
		p.logger.Debug("autoplay rejected", slog.String("error", err.Error()))
	}
	p.state = StatePlaying
}
