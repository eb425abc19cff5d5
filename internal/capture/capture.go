// Package capture owns the pending-clip slot and the confirmation countdown.
//
// The Manager is a single-goroutine state machine: Idle until a new clipboard
// value arrives, then Counting while a 10-second window runs down, then back
// to Idle through exactly one of three exits — completed, cancelled, or
// superseded by fresher content. Completion hands the captured text to the
// finalize callback exactly once per pending clip.
//
// Foreground and background are treated asymmetrically: while the surface is
// visible the countdown gives the user a cancel window; the moment it is
// hidden any active countdown finalizes immediately, because a confirmation
// prompt nobody can see is not a confirmation.
package capture

import (
	"context"
	"time"

	"github.com/clipbridge/clipbridge/internal/events"
)

// CountdownSeconds is the length of the confirmation window.
const CountdownSeconds = 10

const tickInterval = time.Second

// Kind identifies a capture event.
type Kind int

const (
	// KindDetected fires when new clipboard content becomes the pending clip.
	KindDetected Kind = iota
	// KindTick carries the remaining seconds of the active countdown.
	KindTick
	// KindCompleted fires when a pending clip is finalized.
	KindCompleted
	// KindCancelled fires when the user discards the pending clip.
	KindCancelled
	// KindBackgroundSaved reports, once per return to the foreground, how
	// many clips were auto-finalized while hidden.
	KindBackgroundSaved
)

func (k Kind) String() string {
	switch k {
	case KindDetected:
		return "detected"
	case KindTick:
		return "tick"
	case KindCompleted:
		return "completed"
	case KindCancelled:
		return "cancelled"
	case KindBackgroundSaved:
		return "background-saved"
	}
	return "unknown"
}

// Event is a capture notification delivered to subscribers.
type Event struct {
	Kind    Kind
	Text    string // Detected: new pending text; Completed: finalized text
	Seconds int    // Tick: remaining seconds
	Count   int    // BackgroundSaved: clips saved while hidden
}

// Snapshot is a point-in-time view of the manager state, served to the
// status IPC endpoint.
type Snapshot struct {
	Pending string
	Seconds int
	Visible bool
}

// ticker abstracts time.Ticker so tests can drive the countdown by hand.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

func newRealTicker(d time.Duration) ticker { return realTicker{time.NewTicker(d)} }

// Manager is the capture timer state machine. All state below the input
// channels is owned by the Run loop; external goroutines interact only
// through the exported methods.
type Manager struct {
	finalize  func(text string)
	bus       *events.Bus[Event]
	newTicker func(time.Duration) ticker

	offers  chan string
	saves   chan struct{}
	cancels chan struct{}
	vis     chan bool
	queries chan chan Snapshot
	done    chan struct{} // closed when Run returns

	pending string
	seconds int
	visible bool
	tick    ticker
	tickC   <-chan time.Time
	hidden  []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithInitialVisibility sets the visibility assumed before the first
// SetVisible call. Defaults to visible.
func WithInitialVisibility(visible bool) Option {
	return func(m *Manager) { m.visible = visible }
}

// withTickerFunc substitutes the countdown ticker; used by tests.
func withTickerFunc(fn func(time.Duration) ticker) Option {
	return func(m *Manager) { m.newTicker = fn }
}

// New creates a Manager. finalize receives the captured text exactly once per
// completed pending clip; it is invoked from the Run loop, so it must not
// block for long. A finalize payload of "" means "nothing pending" and must
// be treated as a no-op by the consumer.
func New(finalize func(text string), opts ...Option) *Manager {
	m := &Manager{
		finalize:  finalize,
		bus:       events.New[Event]("capture"),
		newTicker: newRealTicker,
		offers:    make(chan string),
		saves:     make(chan struct{}),
		cancels:   make(chan struct{}),
		vis:       make(chan bool),
		queries:   make(chan chan Snapshot),
		done:      make(chan struct{}),
		seconds:   CountdownSeconds,
		visible:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe returns a channel of capture events plus an idempotent cancel.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	return m.bus.Subscribe()
}

// Offer hands newly detected clipboard text to the state machine. Any active
// countdown is superseded: the older candidate is dropped without completion
// or cancellation signals. After Run returns, Offer is a no-op rather than a
// blocked send, so late callers (IPC handlers, the poller pipe) can finish.
func (m *Manager) Offer(text string) {
	select {
	case m.offers <- text:
	case <-m.done:
	}
}

// SaveNow finalizes the pending clip immediately, skipping the rest of the
// countdown. No-op after Run returns.
func (m *Manager) SaveNow() {
	select {
	case m.saves <- struct{}{}:
	case <-m.done:
	}
}

// Cancel discards the pending clip without finalizing it. No-op after Run
// returns.
func (m *Manager) Cancel() {
	select {
	case m.cancels <- struct{}{}:
	case <-m.done:
	}
}

// SetVisible informs the state machine of a foreground/background change.
// No-op after Run returns.
func (m *Manager) SetVisible(visible bool) {
	select {
	case m.vis <- visible:
	case <-m.done:
	}
}

// Snapshot returns the current pending clip and countdown state, or the zero
// Snapshot after Run returns.
func (m *Manager) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case m.queries <- reply:
		return <-reply
	case <-m.done:
		return Snapshot{}
	}
}

// Run processes inputs until ctx is cancelled. All transitions are serialized
// here; no two can race.
func (m *Manager) Run(ctx context.Context) {
	defer m.bus.Close()
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.stopCountdown()
			return
		case text := <-m.offers:
			m.handleOffer(text)
		case <-m.tickC:
			m.handleTick()
		case <-m.saves:
			m.complete()
		case <-m.cancels:
			m.cancel()
		case v := <-m.vis:
			m.handleVisibility(v)
		case reply := <-m.queries:
			reply <- Snapshot{Pending: m.pending, Seconds: m.seconds, Visible: m.visible}
		}
	}
}

// handleOffer replaces the pending clip with text and restarts the countdown.
// The supersede is silent: no completion, no cancellation for the old value.
func (m *Manager) handleOffer(text string) {
	m.stopCountdown()
	m.pending = text
	m.seconds = CountdownSeconds
	m.bus.Publish(Event{Kind: KindDetected, Text: text})
	// Immediate tick so observers see the initial count without waiting 1s.
	m.bus.Publish(Event{Kind: KindTick, Seconds: m.seconds})
	m.tick = m.newTicker(tickInterval)
	m.tickC = m.tick.C()
}

func (m *Manager) handleTick() {
	if m.tickC == nil {
		return
	}
	if !m.visible {
		// Background policy: no one is watching the countdown.
		m.complete()
		return
	}
	m.seconds--
	if m.seconds <= 0 {
		m.bus.Publish(Event{Kind: KindTick, Seconds: 0})
		m.complete()
		return
	}
	m.bus.Publish(Event{Kind: KindTick, Seconds: m.seconds})
}

// complete finalizes the pending clip: the countdown is stopped before any
// other side effect so at most one completion can fire per pending clip.
func (m *Manager) complete() {
	m.stopCountdown()
	text := m.pending
	m.pending = ""
	m.seconds = CountdownSeconds
	if !m.visible && text != "" {
		m.hidden = append(m.hidden, text)
	}
	m.bus.Publish(Event{Kind: KindCompleted, Text: text})
	if m.finalize != nil {
		m.finalize(text)
	}
}

func (m *Manager) cancel() {
	m.stopCountdown()
	m.pending = ""
	m.seconds = CountdownSeconds
	m.bus.Publish(Event{Kind: KindCancelled})
}

func (m *Manager) handleVisibility(visible bool) {
	was := m.visible
	m.visible = visible
	if !visible && m.tickC != nil {
		// Don't wait for the next scheduled tick.
		m.complete()
	}
	if visible && !was && len(m.hidden) > 0 {
		m.bus.Publish(Event{Kind: KindBackgroundSaved, Count: len(m.hidden)})
		m.hidden = nil
	}
}

func (m *Manager) stopCountdown() {
	if m.tick != nil {
		m.tick.Stop()
		m.tick = nil
		m.tickC = nil
	}
}
