package backend

import (
	"encoding/json"
	"testing"
)

func TestDateDecoding(t *testing.T) {
	var p MetricPoint
	if err := json.Unmarshal([]byte(`{"time":"2024-03-11","conversions":12}`), &p); err != nil {
		t.Fatalf("failed decoding valid point: %v", err)
	}
	if got := p.Time.Format("2006-01-02"); got != "2024-03-11" {
		t.Errorf("decoded date %q, want 2024-03-11", got)
	}
}

func TestDateRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{
		`{"time":"11/03/2024"}`,
		`{"time":"2024-13-40"}`,
		`{"time":42}`,
		`{"time":"not a date"}`,
	} {
		var p MetricPoint
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			t.Errorf("expected decode of %s to fail", raw)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2023-01-02"`), &d); err != nil {
		t.Fatalf("failed decoding: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("failed encoding: %v", err)
	}
	if string(out) != `"2023-01-02"` {
		t.Errorf("round trip produced %s", out)
	}
}

func TestSnapshotInitialized(t *testing.T) {
	var s Snapshot
	if s.Initialized() {
		t.Error("empty snapshot should not be initialized")
	}
	s.National = &SeriesResponse{}
	if s.Initialized() {
		t.Error("snapshot with empty series should not be initialized")
	}
	s.National.Points = []MetricPoint{{}}
	if !s.Initialized() {
		t.Error("snapshot with points should be initialized")
	}
}
