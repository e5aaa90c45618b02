package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(Summary{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", time.Second)
	if _, err := c.Summary(context.Background()); err != nil {
		t.Fatalf("summary request failed: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClientSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "geo 'nowhere' not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.GeoSeries(context.Background(), "nowhere", RangeQuery{})
	if err == nil {
		t.Fatal("expected an error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q should carry status and body snippet", err)
	}
}

func TestClientQueryEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(SeriesResponse{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	q := RangeQuery{Start: "2023-01-02", End: "2023-06-05", Channels: []string{"channel0", "channel2"}}
	if _, err := c.NationalSeries(context.Background(), q); err != nil {
		t.Fatalf("national request failed: %v", err)
	}
	for _, want := range []string{"start=2023-01-02", "end=2023-06-05", "channels=channel0", "channels=channel2"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestClientSimulateShiftPostsJSON(t *testing.T) {
	var gotReq ScenarioRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed decoding request body: %v", err)
		}
		json.NewEncoder(w).Encode(ScenarioResponse{TotalSpend: 99})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	resp, err := c.SimulateShift(context.Background(), ScenarioRequest{
		SourceChannel: "channel0",
		TargetChannel: "channel1",
		ShiftRatio:    0.25,
	})
	if err != nil {
		t.Fatalf("shift request failed: %v", err)
	}
	if gotReq.SourceChannel != "channel0" || gotReq.ShiftRatio != 0.25 {
		t.Errorf("server saw request %+v", gotReq)
	}
	if resp.TotalSpend != 99 {
		t.Errorf("response total spend = %f, want 99", resp.TotalSpend)
	}
}

func TestClientCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, "", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := c.Channels(ctx); err == nil {
		t.Error("expected cancelled request to fail")
	}
}
