package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/fsnotify/fsnotify"
)

// RWBox guards a value with a read-write lock.
type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

type activeSession struct {
	id     string
	cancel context.CancelFunc
}

// Datasource owns dashboard sessions. A live session fetches every
// dashboard payload for one filter combination through the cache and
// emits the snapshot progressively as payloads arrive; a replay
// session decodes a snapshot file and re-emits it whenever the file
// changes on disk. Only one session is active at a time, and starting
// a new one cancels the previous session's outstanding fetches.
type Datasource struct {
	pool             *stream.MutationPool[string, Snapshot]
	client           *Client
	cache            *Cache
	watcher          *fsnotify.Watcher
	appCtx           context.Context
	active           RWBox[activeSession]
	spendSteps       int
	credibleInterval float64
}

func NewDatasource(appCtx context.Context, mutator *stream.Mutator, client *Client, cacheTTL time.Duration, spendSteps int, credibleInterval float64) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	ds := &Datasource{
		pool:             stream.NewMutationPool[string, Snapshot](mutator),
		client:           client,
		cache:            NewCache(cacheTTL),
		watcher:          watcher,
		appCtx:           appCtx,
		spendSteps:       spendSteps,
		credibleInterval: credibleInterval,
	}
	return ds, nil
}

func (d *Datasource) SnapshotStream(ctx context.Context) <-chan map[string]*stream.Mutation[Snapshot] {
	return d.pool.Stream(ctx)
}

func (d *Datasource) getMutation(ctx context.Context, sessionID string) *stream.Mutation[Snapshot] {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return (<-d.SnapshotStream(ctx))[sessionID]
}

func (d *Datasource) StreamSession(ctx context.Context, sessionID string) <-chan Snapshot {
	return d.getMutation(ctx, sessionID).Stream(ctx)
}

// ActiveSnapshots emits every revision of whichever session is
// currently active, switching sessions as new ones start.
func (d *Datasource) ActiveSnapshots(ctx context.Context) <-chan Snapshot {
	return stream.Multiplex(d.pool.Stream(ctx), func(ctx context.Context, state string, mutations map[string]*stream.Mutation[Snapshot]) (<-chan Snapshot, string) {
		var activeID string
		d.active.Read(func(a *activeSession) {
			activeID = a.id
		})
		if activeID == "" || activeID == state {
			return nil, state
		}
		m, ok := mutations[activeID]
		if !ok {
			return nil, state
		}
		return m.Stream(ctx), activeID
	})
}

// GeoList returns the geographies available for filtering. Results
// share the session cache so repeated dropdown opens don't refetch.
func (d *Datasource) GeoList(ctx context.Context) ([]GeoListItem, error) {
	return cached(ctx, d.cache, "geos", d.client.ListGeos)
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

func sessionKey(geo string, q RangeQuery) string {
	return geo + "|" + q.Key()
}

// FetchDashboard starts a live session for the given filter, cancelling
// whatever session came before it, and returns the session ID.
func (d *Datasource) FetchDashboard(geo string, q RangeQuery) string {
	id := generateSessionID()
	fetchCtx, cancel := context.WithCancel(d.appCtx)
	d.active.Write(func(a *activeSession) {
		if a.cancel != nil {
			a.cancel()
		}
		a.id = id
		a.cancel = cancel
	})
	stream.Mutate(d.pool, id, func(ctx context.Context) <-chan Snapshot {
		out := make(chan Snapshot, 1)
		go func() {
			defer close(out)
			defer cancel()
			snap := Snapshot{
				ID:   id,
				Mode: ModeLive,
				Geo:  geo,
			}
			out <- snap
			emit := func() {
				select {
				case out <- snap:
				case <-ctx.Done():
				}
			}
			fail := func(err error) bool {
				if err == nil {
					return false
				}
				if snap.Err == nil {
					snap.Err = err
					emit()
				}
				return true
			}
			key := sessionKey(geo, q)

			summary, err := cached(fetchCtx, d.cache, "summary", d.client.Summary)
			if !fail(err) {
				snap.Summary = summary
				emit()
			}
			series, err := cached(fetchCtx, d.cache, "series|"+key, func(ctx context.Context) (*SeriesResponse, error) {
				if geo == "" {
					return d.client.NationalSeries(ctx, q)
				}
				return d.client.GeoSeries(ctx, geo, q)
			})
			if !fail(err) {
				snap.National = series
				emit()
			}
			channels, err := cached(fetchCtx, d.cache, "channels", d.client.Channels)
			if !fail(err) {
				snap.Channels = channels
				emit()
			}
			contributions, err := cached(fetchCtx, d.cache, "contributions|"+q.Key(), func(ctx context.Context) (*ContributionSeries, error) {
				return d.client.Contributions(ctx, q, d.credibleInterval)
			})
			if !fail(err) {
				snap.Contributions = contributions
				emit()
			}
			curves, err := cached(fetchCtx, d.cache, "curves", func(ctx context.Context) (*ResponseCurves, error) {
				return d.client.ResponseCurves(ctx, d.spendSteps, d.credibleInterval)
			})
			if !fail(err) {
				snap.Curves = curves
				emit()
			}
		}()
		return out
	})
	return id
}

// Refresh discards the cached responses behind the current view and
// starts a fresh session with the same filter. Entries for other views
// stay until their TTL expires.
func (d *Datasource) Refresh(geo string, q RangeQuery) string {
	d.invalidateView(geo, q)
	return d.FetchDashboard(geo, q)
}

// invalidateView drops every cache entry one dashboard view reads.
func (d *Datasource) invalidateView(geo string, q RangeQuery) {
	for _, key := range []string{
		"summary",
		"channels",
		"curves",
		"series|" + sessionKey(geo, q),
		"contributions|" + q.Key(),
	} {
		d.cache.Invalidate(key)
	}
}

// LoadFromFile starts a replay session from a snapshot file chosen by
// the user.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile(".json")
	if err != nil {
		return "", err
	}
	return d.replaySession(file), nil
}

func (d *Datasource) replaySession(file io.ReadCloser) string {
	id := generateSessionID()
	var name string
	if f, ok := file.(interface{ Name() string }); ok {
		name = f.Name()
		d.watcher.Add(name)
	}
	d.active.Write(func(a *activeSession) {
		if a.cancel != nil {
			a.cancel()
		}
		a.id = id
		a.cancel = nil
	})
	stream.Mutate(d.pool, id, func(ctx context.Context) <-chan Snapshot {
		out := make(chan Snapshot, 1)
		go func() {
			defer close(out)
			defer file.Close()
			snap := Snapshot{ID: id, Mode: ModeReplaying}
			emit := func() {
				select {
				case out <- snap:
				case <-ctx.Done():
				}
			}
			if err := json.NewDecoder(file).Decode(&snap); err != nil {
				snap.Err = fmt.Errorf("failed decoding snapshot: %w", err)
			}
			snap.ID = id
			snap.Mode = ModeReplaying
			emit()
			if name == "" {
				return
			}
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-d.watcher.Events:
					if !ok {
						return
					}
					if ev.Name != name || !ev.Has(fsnotify.Write) {
						continue
					}
					reread, err := os.Open(name)
					if err != nil {
						snap.Err = fmt.Errorf("failed re-reading snapshot: %w", err)
						emit()
						continue
					}
					fresh := Snapshot{ID: id, Mode: ModeReplaying}
					if err := json.NewDecoder(reread).Decode(&fresh); err != nil {
						snap.Err = fmt.Errorf("failed decoding snapshot: %w", err)
						reread.Close()
						emit()
						continue
					}
					reread.Close()
					fresh.ID = id
					fresh.Mode = ModeReplaying
					snap = fresh
					emit()
				}
			}
		}()
		return out
	})
	return id
}

// WriteSnapshot persists a snapshot so it can be replayed later.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed encoding snapshot: %w", err)
	}
	return nil
}
