// Package heartbeat keeps the remote store's project alive with periodic
// light-weight pings. Free-tier backends pause after long inactivity; a ping
// every few minutes while the surface is in the foreground prevents that.
//
// The service is injectable state with an explicit Start/Stop lifecycle, not
// a module-level singleton, so tests can substitute both the pinger and the
// clock.
package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the ping cadence.
const DefaultInterval = 5 * time.Minute

// Pinger is anything that can issue a cheap keep-alive request.
// Implemented by *store.Gateway.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service pings while started and visible. Failures are warnings, never
// fatal, and never retried off-cadence.
type Service struct {
	pinger   Pinger
	interval time.Duration
	visible  func() bool

	newTicker func(time.Duration) Ticker

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Ticker abstracts time.Ticker for tests.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// Option configures a Service.
type Option func(*Service)

// WithInterval overrides the ping cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

// WithTicker substitutes the ticker factory; used by tests.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(s *Service) { s.newTicker = fn }
}

// New creates a stopped Service. visible gates periodic pings; pass nil to
// ping unconditionally.
func New(pinger Pinger, visible func() bool, opts ...Option) *Service {
	s := &Service{
		pinger:   pinger,
		interval: DefaultInterval,
		visible:  visible,
		newTicker: func(d time.Duration) Ticker {
			return realTicker{time.NewTicker(d)}
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins pinging: once immediately, then on the cadence while visible.
// Calling Start on a running service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Stop halts pinging. Safe to call on a stopped service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Nudge triggers an immediate ping, e.g. when the surface returns to the
// foreground. No-op on a stopped service.
func (s *Service) Nudge() {
	s.mu.Lock()
	running := s.cancel != nil
	s.mu.Unlock()
	if running {
		s.ping()
	}
}

func (s *Service) run(ctx context.Context) {
	s.ping()

	t := s.newTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if s.visible == nil || s.visible() {
				s.ping()
			}
		}
	}
}

func (s *Service) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		slog.Warn("heartbeat ping failed", "err", err)
		return
	}
	slog.Debug("heartbeat ok")
}
