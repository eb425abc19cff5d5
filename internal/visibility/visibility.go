// Package visibility tracks whether the consuming surface is in the
// foreground. It exposes the current boolean and an edge event that fires
// exactly on each hidden→visible transition.
package visibility

import (
	"sync"
	"time"

	"github.com/clipbridge/clipbridge/internal/events"
)

// focusDelay is the pause between a focus hint and the prompt re-check it
// triggers. Focus often arrives a beat before the clipboard settles.
const focusDelay = 150 * time.Millisecond

// Tracker holds the current visibility state.
type Tracker struct {
	mu      sync.Mutex
	visible bool
	bus     *events.Bus[struct{}] // became-visible edges

	nudge func() // prompt clip-source re-check, may be nil

	// timer injection point for tests
	after func(time.Duration, func()) *time.Timer
}

// New returns a Tracker initialized to the given visibility. No edge event is
// emitted for the initial state.
func New(visible bool) *Tracker {
	return &Tracker{
		visible: visible,
		bus:     events.New[struct{}]("visibility"),
		after:   time.AfterFunc,
	}
}

// Visible reports the current visibility.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Set records a visibility change. A false→true transition publishes one
// became-visible edge and schedules the registered nudge, exactly as a focus
// hint would; repeated Set(true) calls do not.
func (t *Tracker) Set(visible bool) {
	t.mu.Lock()
	was := t.visible
	t.visible = visible
	fn := t.nudge
	after := t.after
	t.mu.Unlock()

	if visible && !was {
		t.bus.Publish(struct{}{})
		if fn != nil {
			after(focusDelay, fn)
		}
	}
}

// BecameVisible returns a channel receiving one value per hidden→visible
// transition, plus an idempotent cancel function.
func (t *Tracker) BecameVisible() (<-chan struct{}, func()) {
	return t.bus.Subscribe()
}

// OnFocusNudge registers the function invoked (after a short delay) when a
// focus hint arrives. Typically wired to the poller's Nudge.
func (t *Tracker) OnFocusNudge(fn func()) {
	t.mu.Lock()
	t.nudge = fn
	t.mu.Unlock()
}

// Focus is a secondary hint that the surface regained window focus. It does
// not alter the visibility boolean; it only schedules a prompt clip-source
// re-check.
func (t *Tracker) Focus() {
	t.mu.Lock()
	fn := t.nudge
	after := t.after
	t.mu.Unlock()
	if fn == nil {
		return
	}
	after(focusDelay, fn)
}
