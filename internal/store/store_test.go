package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbridge/clipbridge/internal/platform"
)

type staticIdentity string

func (s staticIdentity) Active() string { return string(s) }

// Degraded-gateway behavior: no credentials configured. Writes fail fast,
// reads stay usable.

func TestUnconfiguredInsertFailsFast(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"))
	require.NoError(t, err)

	_, err = gw.Insert(context.Background(), "hello", platform.Windows)
	require.Error(t, err)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestInsertCarriesStoreErrorMessage(t *testing.T) {
	// A PostgREST-shaped error body; the message must reach the caller.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"code":"23514","message":"constraint violation on clips","details":"","hint":""}`)
	}))
	defer srv.Close()

	gw, err := New(srv.URL, "test-key", staticIdentity("user_x"))
	require.NoError(t, err)

	_, err = gw.Insert(context.Background(), "dup", platform.Windows)
	require.Error(t, err)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "insert", perr.Op)
	assert.Contains(t, err.Error(), "constraint violation")
}

func TestUnconfiguredDeletePropagates(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"))
	require.NoError(t, err)

	err = gw.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestDeleteWithoutIdentityIsNoop(t *testing.T) {
	gw, err := New("", "", staticIdentity(""))
	require.NoError(t, err)

	assert.NoError(t, gw.Delete(context.Background(), "c1"))
}

func TestUnconfiguredQueryDegradesEmpty(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"))
	require.NoError(t, err)

	clips, err := gw.Query(context.Background(), FilterAll, 0)
	assert.NoError(t, err)
	assert.Empty(t, clips)
}

func TestCountByDeviceDegradesToZero(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"))
	require.NoError(t, err)

	counts := gw.CountByDevice(context.Background())
	require.Len(t, counts, len(platform.Devices))
	for _, d := range platform.Devices {
		assert.Zero(t, counts[d], d)
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"), WithFeedInterval(10*time.Millisecond))
	require.NoError(t, err)

	got := make(chan []Clip, 8)
	unsub := gw.Subscribe(context.Background(), FilterAll, func(clips []Clip) {
		got <- clips
	})
	defer unsub()

	select {
	case clips := <-got:
		assert.Empty(t, clips)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"), WithFeedInterval(10*time.Millisecond))
	require.NoError(t, err)

	got := make(chan []Clip, 8)
	unsub := gw.Subscribe(context.Background(), FilterAll, func(clips []Clip) {
		got <- clips
	})

	<-got // initial snapshot

	unsub()
	unsub() // second call must be safe

	// No further delivery after unsubscribe.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-got:
		t.Fatal("delivery after unsubscribe")
	default:
	}
}

func TestLocalMutationNotifiesSubscribers(t *testing.T) {
	gw, err := New("", "", staticIdentity("user_x"), WithFeedInterval(time.Hour))
	require.NoError(t, err)

	got := make(chan []Clip, 8)
	unsub := gw.Subscribe(context.Background(), FilterAll, func(clips []Clip) {
		got <- clips
	})
	defer unsub()

	<-got // initial snapshot

	// A local mutation redelivers even when the snapshot is unchanged.
	gw.changed.Publish(struct{}{})
	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no redelivery after local change")
	}
}
