package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clipbridge/clipbridge/internal/clip"
)

// fakeSource is a scriptable clip.Source.
type fakeSource struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Close()       {}

func (f *fakeSource) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeSource) set(text string, err error) {
	f.mu.Lock()
	f.text = text
	f.err = err
	f.mu.Unlock()
}

func startPoller(t *testing.T, src clip.Source, opts ...Option) (<-chan string, *Poller) {
	t.Helper()
	opts = append(opts, WithInterval(5*time.Millisecond))
	p := New(src, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go p.Run(ctx)
	ch, cancelSub := p.Subscribe()
	t.Cleanup(cancelSub)
	return ch, p
}

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for clipboard value")
		return ""
	}
}

func expectQuiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitsNewDistinctValues(t *testing.T) {
	src := &fakeSource{}
	ch, _ := startPoller(t, src)

	src.set("hello", nil)
	require.Equal(t, "hello", recv(t, ch))

	// Same value again: no re-emission.
	expectQuiet(t, ch)

	src.set("world", nil)
	require.Equal(t, "world", recv(t, ch))
}

func TestBlankContentSuppressed(t *testing.T) {
	src := &fakeSource{}
	ch, _ := startPoller(t, src)

	src.set("   \n\t ", nil)
	expectQuiet(t, ch)

	// The raw, untrimmed text is emitted once content appears.
	src.set("  padded  ", nil)
	require.Equal(t, "  padded  ", recv(t, ch))
}

func TestPausedSkipsReads(t *testing.T) {
	src := &fakeSource{}
	ch, p := startPoller(t, src)

	p.SetPaused(true)
	time.Sleep(20 * time.Millisecond) // let the pause land
	src.set("while paused", nil)
	expectQuiet(t, ch)

	p.SetPaused(false)
	require.Equal(t, "while paused", recv(t, ch))
}

func TestPermissionErrorsRetrySilently(t *testing.T) {
	src := &fakeSource{err: clip.ErrPermissionDenied}
	ch, _ := startPoller(t, src)

	expectQuiet(t, ch)

	// Permission granted: the next poll picks the value up.
	src.set("granted", nil)
	require.Equal(t, "granted", recv(t, ch))
}

func TestUnexpectedErrorsRetry(t *testing.T) {
	src := &fakeSource{err: context.DeadlineExceeded}
	ch, _ := startPoller(t, src)

	expectQuiet(t, ch)

	src.set("recovered", nil)
	require.Equal(t, "recovered", recv(t, ch))
}

func TestNudgeChecksOffCadence(t *testing.T) {
	src := &fakeSource{}
	// Interval long enough that only a nudge can deliver in time.
	p := New(src, WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go p.Run(ctx)
	ch, cancelSub := p.Subscribe()
	t.Cleanup(cancelSub)

	time.Sleep(10 * time.Millisecond) // let Run reach its select
	src.set("focused", nil)
	p.Nudge()
	require.Equal(t, "focused", recv(t, ch))
}
