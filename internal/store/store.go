// Package store is the persistence gateway for finalized clips.
//
// Clips live in a Supabase "clips" table, scoped by the active identity.
// The gateway is append-oriented: insert, filtered/ordered query, snapshot
// subscription, delete, and per-device counts. Writes propagate store errors
// to the caller (no automatic retry — a failed save is lost unless the
// caller retries); reads degrade to empty results so the surface stays
// usable when the backend is missing or unreachable.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/clipbridge/clipbridge/internal/events"
	"github.com/clipbridge/clipbridge/internal/platform"
)

const (
	table = "clips"

	// DefaultQueryLimit is the fixed page size for queries and snapshots.
	DefaultQueryLimit = 100

	// defaultFeedInterval is how often a subscription re-queries the store
	// to pick up changes made by other devices.
	defaultFeedInterval = 3 * time.Second
)

// ErrNotConfigured is returned by write operations when no backend
// credentials were supplied.
var ErrNotConfigured = fmt.Errorf("supabase backend not configured (set url and key)")

// Identity supplies the active identity at call time. Implemented by
// *identity.Store. The gateway re-fetches it on every operation rather than
// caching, so an identity switch takes effect immediately.
type Identity interface {
	Active() string
}

// Gateway talks to the clips table on behalf of one identity.
type Gateway struct {
	client *supa.Client
	ident  Identity

	feedInterval time.Duration
	changed      *events.Bus[struct{}] // local mutation feed
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithFeedInterval overrides the subscription re-query cadence.
func WithFeedInterval(d time.Duration) Option {
	return func(g *Gateway) { g.feedInterval = d }
}

// New creates a Gateway. Empty url or key yields a degraded gateway: reads
// return empty results, writes fail fast with ErrNotConfigured.
func New(url, key string, ident Identity, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		ident:        ident,
		feedInterval: defaultFeedInterval,
		changed:      events.New[struct{}]("store"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if url == "" || key == "" {
		slog.Warn("supabase credentials missing, persistence disabled")
		return g, nil
	}
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	g.client = client
	return g, nil
}

// Insert persists text as a new clip stamped with the current time, the
// given device tag, and the active identity. The stored row (including the
// store-assigned id) is returned.
func (g *Gateway) Insert(ctx context.Context, text string, device platform.Device) (Clip, error) {
	uid := g.ident.Active()
	if g.client == nil {
		return Clip{}, &PersistenceError{Op: "insert", Err: ErrNotConfigured}
	}
	if uid == "" {
		return Clip{}, &PersistenceError{Op: "insert", Err: fmt.Errorf("identity not resolved")}
	}

	row := Clip{
		UserID:    uid,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Device:    device,
		IsSynced:  true,
	}
	raw, _, err := g.client.From(table).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return Clip{}, &PersistenceError{Op: "insert", Err: err}
	}

	var inserted []Clip
	if err := json.Unmarshal(raw, &inserted); err != nil {
		return Clip{}, &PersistenceError{Op: "insert", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(inserted) == 0 {
		return Clip{}, &PersistenceError{Op: "insert", Err: fmt.Errorf("empty insert response")}
	}

	g.changed.Publish(struct{}{})
	return inserted[0], nil
}

// Query returns up to limit clips for the active identity, newest first,
// optionally narrowed to one device tag. limit <= 0 means DefaultQueryLimit.
// An unconfigured gateway degrades to an empty result.
func (g *Gateway) Query(ctx context.Context, filter Filter, limit int) ([]Clip, error) {
	uid := g.ident.Active()
	if g.client == nil || uid == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	q := g.client.From(table).
		Select("*", "", false).
		Eq("user_id", uid)
	if !filter.All() {
		q = q.Eq("device", string(filter.Device()))
	}
	raw, _, err := q.
		Order("timestamp", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}

	var clips []Clip
	if err := json.Unmarshal(raw, &clips); err != nil {
		return nil, &PersistenceError{Op: "query", Err: fmt.Errorf("decode response: %w", err)}
	}
	return clips, nil
}

// Subscribe delivers an initial snapshot via Query and then the entire
// re-queried snapshot whenever the change feed fires: immediately after a
// local mutation, and on a coarse re-query cadence to pick up other devices.
// No incremental diffing. Query failures degrade to an empty delivery.
// The returned unsubscribe function detaches the feed; calling it more than
// once is safe.
func (g *Gateway) Subscribe(ctx context.Context, filter Filter, fn func([]Clip)) func() {
	subCtx, cancel := context.WithCancel(ctx)
	changes, cancelFeed := g.changed.Subscribe()

	go func() {
		var last []Clip
		deliver := func(force bool) {
			clips, err := g.Query(subCtx, filter, DefaultQueryLimit)
			if err != nil {
				slog.Warn("snapshot query failed", "err", err)
				clips = nil
			}
			if !force && reflect.DeepEqual(clips, last) {
				return
			}
			last = clips
			fn(clips)
		}

		deliver(true)

		t := time.NewTicker(g.feedInterval)
		defer t.Stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case <-changes:
				deliver(true)
			case <-t.C:
				deliver(false)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			cancelFeed()
		})
	}
}

// CountByDevice returns the number of clips per device tag for the active
// identity. Counts run in parallel; any failure degrades that tag to zero
// rather than propagating.
func (g *Gateway) CountByDevice(ctx context.Context) map[platform.Device]int64 {
	counts := make(map[platform.Device]int64, len(platform.Devices))
	for _, d := range platform.Devices {
		counts[d] = 0
	}

	uid := g.ident.Active()
	if g.client == nil || uid == "" {
		return counts
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, d := range platform.Devices {
		wg.Add(1)
		go func(d platform.Device) {
			defer wg.Done()
			_, n, err := g.client.From(table).
				Select("id", "exact", true).
				Eq("user_id", uid).
				Eq("device", string(d)).
				Execute()
			if err != nil {
				slog.Warn("device count failed", "device", d, "err", err)
				return
			}
			mu.Lock()
			counts[d] = n
			mu.Unlock()
		}(d)
	}
	wg.Wait()
	return counts
}

// Delete removes the clip matching both id and the active identity. It is a
// silent no-op while the identity is unresolved.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	uid := g.ident.Active()
	if uid == "" {
		return nil
	}
	if g.client == nil {
		return &PersistenceError{Op: "delete", Err: ErrNotConfigured}
	}

	_, _, err := g.client.From(table).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", uid).
		Execute()
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	g.changed.Publish(struct{}{})
	return nil
}

// Ping issues the lightest possible query to keep the backend project from
// idling out. Used by the heartbeat service.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.client == nil {
		return ErrNotConfigured
	}
	_, _, err := g.client.From(table).
		Select("id", "exact", true).
		Limit(1, "").
		Execute()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
