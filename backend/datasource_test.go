package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"git.sr.ht/~gioverse/skel/stream"
)

func newTestDatasource(t *testing.T, handler http.Handler) *Datasource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	client := NewClient(srv.URL, "", time.Second)
	ds, err := NewDatasource(ctx, stream.NewMutator(ctx, time.Second), client, time.Minute, 50, 0.9)
	if err != nil {
		t.Fatalf("failed creating datasource: %v", err)
	}
	return ds
}

func TestGeoListSharesCacheEntry(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/marketing-mix/geos", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"geo":"geo_a","start":"2023-01-02","end":"2023-12-25","sample_size":52}]`))
	})
	ds := newTestDatasource(t, mux)

	ctx := context.Background()
	first, err := ds.GeoList(ctx)
	if err != nil {
		t.Fatalf("first GeoList failed: %v", err)
	}
	second, err := ds.GeoList(ctx)
	if err != nil {
		t.Fatalf("second GeoList failed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected one upstream fetch, got %d", got)
	}
	if len(first) != 1 || first[0].Geo != "geo_a" {
		t.Errorf("unexpected geo list: %+v", first)
	}
	if len(second) != 1 || second[0].Geo != first[0].Geo {
		t.Errorf("cached list diverged: %+v", second)
	}
}

func TestInvalidateViewForcesRefetch(t *testing.T) {
	var summaryHits, seriesHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/marketing-mix/summary", func(w http.ResponseWriter, r *http.Request) {
		summaryHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"metrics":[],"insights":[]}`))
	})
	mux.HandleFunc("/marketing-mix/geos/", func(w http.ResponseWriter, r *http.Request) {
		seriesHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"geo":"geo_a","start":"2023-01-02","end":"2023-01-02","points":[]}`))
	})
	ds := newTestDatasource(t, mux)

	ctx := context.Background()
	q := RangeQuery{Start: "2023-01-02"}
	loadView := func() {
		if _, err := cached(ctx, ds.cache, "summary", ds.client.Summary); err != nil {
			t.Fatalf("summary fetch failed: %v", err)
		}
		_, err := cached(ctx, ds.cache, "series|"+sessionKey("geo_a", q), func(ctx context.Context) (*SeriesResponse, error) {
			return ds.client.GeoSeries(ctx, "geo_a", q)
		})
		if err != nil {
			t.Fatalf("series fetch failed: %v", err)
		}
	}

	loadView()
	loadView()
	if summaryHits.Load() != 1 || seriesHits.Load() != 1 {
		t.Fatalf("expected cached view, got summary=%d series=%d", summaryHits.Load(), seriesHits.Load())
	}

	ds.invalidateView("geo_a", q)
	loadView()
	if summaryHits.Load() != 2 || seriesHits.Load() != 2 {
		t.Errorf("expected refetch after invalidation, got summary=%d series=%d", summaryHits.Load(), seriesHits.Load())
	}

	// A different view's invalidation leaves these entries alone.
	ds.invalidateView("geo_b", RangeQuery{})
	loadView()
	if summaryHits.Load() != 3 {
		t.Errorf("summary is shared across views, expected refetch, got %d", summaryHits.Load())
	}
	if seriesHits.Load() != 2 {
		t.Errorf("geo_a series should stay cached, got %d fetches", seriesHits.Load())
	}
}
