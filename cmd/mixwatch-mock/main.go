// Command mixwatch-mock serves a deterministic synthetic marketing-mix
// API for local development and demos. The dashboard pointed at it sees
// the same dataset on every run with the same seed.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/mixwatch/mixwatch/backend"
)

type server struct {
	ds    *backend.SyntheticDataset
	token string
}

func main() {
	addr := flag.String("addr", "localhost:8000", "listen address")
	seed := flag.Int64("seed", 1, "dataset seed")
	weeks := flag.Int("weeks", 104, "weeks of weekly data to generate")
	token := flag.String("token", "", "require this bearer token when set")
	flag.Parse()

	s := &server{
		ds:    backend.NewSyntheticDataset(*seed, *weeks),
		token: *token,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/marketing-mix/geos", s.handleGeos)
	mux.HandleFunc("/marketing-mix/geos/", s.handleGeoSeries)
	mux.HandleFunc("/marketing-mix/national", s.handleNational)
	mux.HandleFunc("/marketing-mix/channels", s.handleChannels)
	mux.HandleFunc("/marketing-mix/summary", s.handleSummary)
	mux.HandleFunc("/marketing-mix/scenarios/shift", s.handleShift)
	mux.HandleFunc("/mmm/contributions", s.handleContributions)
	mux.HandleFunc("/mmm/response-curves", s.handleCurves)

	log.Printf("serving synthetic marketing-mix API on %s (seed=%d, weeks=%d)", *addr, *seed, *weeks)
	log.Fatal(http.ListenAndServe(*addr, s.auth(mux)))
}

func (s *server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed encoding response: %v", err)
	}
}

func rangeQuery(r *http.Request) backend.RangeQuery {
	q := r.URL.Query()
	return backend.RangeQuery{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Channels: q["channels"],
	}
}

func (s *server) handleGeos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ds.GeoItems)
}

func (s *server) handleGeoSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	geo := strings.TrimPrefix(r.URL.Path, "/marketing-mix/geos/")
	series, ok := s.ds.Geos[geo]
	if !ok {
		http.Error(w, "geo '"+geo+"' not found", http.StatusNotFound)
		return
	}
	writeJSON(w, backend.FilterSeries(series, rangeQuery(r)))
}

func (s *server) handleNational(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, backend.FilterSeries(s.ds.National, rangeQuery(r)))
}

func (s *server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ds.Channels)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ds.Summary)
}

func (s *server) handleShift(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req backend.ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := s.ds.SimulateShift(req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, backend.ErrUnknownChannel) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, resp)
}

func (s *server) handleContributions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ds.Contributions(rangeQuery(r)))
}

func (s *server) handleCurves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.ds.Curves)
}
