package heartbeat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPinger struct {
	pings chan struct{}
	err   error
}

func newCountingPinger() *countingPinger {
	return &countingPinger{pings: make(chan struct{}, 16)}
}

func (p *countingPinger) Ping(ctx context.Context) error {
	p.pings <- struct{}{}
	return p.err
}

type manualTicker struct{ ch chan time.Time }

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               {}
func (t *manualTicker) fire()               { t.ch <- time.Now() }

func newService(p Pinger, visible func() bool) (*Service, *manualTicker) {
	mt := &manualTicker{ch: make(chan time.Time)}
	svc := New(p, visible, WithTicker(func(time.Duration) Ticker { return mt }))
	return svc, mt
}

func expectPing(t *testing.T, p *countingPinger) {
	t.Helper()
	select {
	case <-p.pings:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a ping")
	}
}

func expectNoPing(t *testing.T, p *countingPinger) {
	t.Helper()
	select {
	case <-p.pings:
		t.Fatal("unexpected ping")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartPingsImmediately(t *testing.T) {
	p := newCountingPinger()
	svc, _ := newService(p, nil)

	svc.Start()
	defer svc.Stop()

	expectPing(t, p)
}

func TestCadencePingsWhileVisible(t *testing.T) {
	p := newCountingPinger()
	svc, mt := newService(p, func() bool { return true })

	svc.Start()
	defer svc.Stop()
	expectPing(t, p) // startup ping

	mt.fire()
	expectPing(t, p)
	mt.fire()
	expectPing(t, p)
}

func TestCadenceSkippedWhileHidden(t *testing.T) {
	p := newCountingPinger()
	visible := false
	svc, mt := newService(p, func() bool { return visible })

	svc.Start()
	defer svc.Stop()
	expectPing(t, p) // startup ping is unconditional

	mt.fire()
	expectNoPing(t, p)

	visible = true
	mt.fire()
	expectPing(t, p)
}

func TestStopHaltsPinging(t *testing.T) {
	p := newCountingPinger()
	svc, _ := newService(p, nil)

	svc.Start()
	expectPing(t, p)
	svc.Stop()

	// Nudge after Stop is a no-op.
	svc.Nudge()
	expectNoPing(t, p)
}

func TestNudgePingsOffCadence(t *testing.T) {
	p := newCountingPinger()
	svc, _ := newService(p, func() bool { return false })

	svc.Start()
	defer svc.Stop()
	expectPing(t, p)

	svc.Nudge()
	expectPing(t, p)
}

func TestStartTwiceRunsOneLoop(t *testing.T) {
	p := newCountingPinger()
	svc, _ := newService(p, nil)

	svc.Start()
	svc.Start()
	defer svc.Stop()

	expectPing(t, p)
	expectNoPing(t, p)
}

func TestPingFailureIsNotFatal(t *testing.T) {
	p := newCountingPinger()
	p.err = fmt.Errorf("project paused")
	svc, mt := newService(p, nil)

	svc.Start()
	defer svc.Stop()
	expectPing(t, p)

	// The loop keeps ticking after a failure.
	mt.fire()
	expectPing(t, p)
}

func TestStopIsIdempotent(t *testing.T) {
	svc, _ := newService(newCountingPinger(), nil)
	svc.Start()
	svc.Stop()
	svc.Stop()
	assert.NotPanics(t, func() { svc.Stop() })
}

func TestDefaultInterval(t *testing.T) {
	require.Equal(t, 5*time.Minute, DefaultInterval)
}
