// Package poller samples the system clipboard on a fixed cadence and emits
// an event whenever new, non-blank content appears.
package poller

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/clipbridge/clipbridge/internal/clip"
	"github.com/clipbridge/clipbridge/internal/events"
)

// DefaultInterval is the clipboard sampling cadence.
const DefaultInterval = 500 * time.Millisecond

// Poller periodically reads a clip.Source and publishes each new distinct
// value. A value is "new" when it differs from the last successfully observed
// one and is non-empty after trimming; the published text is the raw,
// untrimmed clipboard content.
type Poller struct {
	source   clip.Source
	interval time.Duration
	bus      *events.Bus[string]

	pause chan bool
	nudge chan struct{}

	// loop-owned, never touched outside Run
	last   string
	paused bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the sampling cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// New creates a Poller reading from source. Call Run to start it.
func New(source clip.Source, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		interval: DefaultInterval,
		bus:      events.New[string]("poller"),
		pause:    make(chan bool, 1),
		nudge:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe returns a channel of newly observed clipboard values and a cancel
// function. Cancel is safe to call more than once.
func (p *Poller) Subscribe() (<-chan string, func()) {
	return p.bus.Subscribe()
}

// SetPaused suspends or resumes sampling. While paused the source is not read
// at all.
func (p *Poller) SetPaused(paused bool) {
	select {
	case p.pause <- paused:
	default:
	}
}

// Nudge requests an immediate off-cadence check, e.g. when the host surface
// regains focus. Coalesced if one is already queued.
func (p *Poller) Nudge() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Run samples the clipboard until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("clipboard poller started",
		"backend", p.source.Name(),
		"interval", p.interval,
	)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	defer p.bus.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case paused := <-p.pause:
			p.paused = paused
		case <-p.nudge:
			if !p.paused {
				p.check()
			}
		case <-t.C:
			if p.paused {
				continue
			}
			p.check()
		}
	}
}

// check reads the source once and publishes the value if it is new.
func (p *Poller) check() {
	text, err := p.source.Read()
	if err != nil {
		// Permission and security errors are expected until the user grants
		// access; retry silently on the next tick.
		if !clip.IsExpected(err) {
			slog.Warn("clipboard read failed", "err", err)
		}
		return
	}
	if strings.TrimSpace(text) == "" || text == p.last {
		return
	}
	p.last = text
	p.bus.Publish(text)
}
