package export

import (
	"strings"
	"testing"

	"github.com/mixwatch/mixwatch/backend"
)

func TestSeriesSVG(t *testing.T) {
	ds := backend.NewSyntheticDataset(1, 26)
	svg, err := SeriesSVG(ds.National, 800, 280)
	if err != nil {
		t.Fatalf("failed rendering series: %v", err)
	}
	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("missing svg preamble: %s", svg[:60])
	}
	if !strings.Contains(svg, `stroke-width="2"`) {
		t.Error("missing line stroke")
	}
	if !strings.Contains(svg, "2023-01-02") {
		t.Error("missing domain label")
	}
	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected area + line paths, got %d", strings.Count(svg, "<path"))
	}
}

func TestSeriesSVGNoData(t *testing.T) {
	if _, err := SeriesSVG(nil, 800, 280); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := SeriesSVG(&backend.SeriesResponse{}, 800, 280); err != ErrNoData {
		t.Errorf("expected ErrNoData for empty series, got %v", err)
	}
}

func TestBarsSVGRejectsDuplicateLabels(t *testing.T) {
	channels := []backend.ChannelAggregate{
		{ID: "a", Name: "Search", TotalSpend: 100},
		{ID: "b", Name: "Search", TotalSpend: 200},
	}
	if _, err := BarsSVG(channels, 800, 300); err == nil {
		t.Error("expected duplicate labels to fail")
	}
}

func TestBarsSVG(t *testing.T) {
	ds := backend.NewSyntheticDataset(1, 26)
	svg, err := BarsSVG(ds.Channels, 800, 300)
	if err != nil {
		t.Fatalf("failed rendering bars: %v", err)
	}
	if got := strings.Count(svg, "<rect"); got != len(ds.Channels) {
		t.Errorf("expected %d bars, got %d", len(ds.Channels), got)
	}
}

func TestCurvesSVG(t *testing.T) {
	ds := backend.NewSyntheticDataset(1, 26)
	svg, err := CurvesSVG(ds.Curves, 800, 0)
	if err != nil {
		t.Fatalf("failed rendering curves: %v", err)
	}
	// Each channel gets a band and a mean line.
	if got := strings.Count(svg, "<path"); got != 2*len(ds.Curves.Channels) {
		t.Errorf("expected %d paths, got %d", 2*len(ds.Curves.Channels), got)
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("missing threshold reference lines")
	}
}

func TestWorkbook(t *testing.T) {
	ds := backend.NewSyntheticDataset(1, 12)
	f, err := Workbook(ds.Snapshot())
	if err != nil {
		t.Fatalf("failed building workbook: %v", err)
	}
	for _, sheet := range []string{"Summary", "Series", "Channels", "Contributions", "Curves"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}
	got, err := f.GetCellValue("Series", "A2")
	if err != nil {
		t.Fatalf("failed reading cell: %v", err)
	}
	if got != "2023-01-02" {
		t.Errorf("first series week = %q", got)
	}
}

func TestWorkbookNoData(t *testing.T) {
	if _, err := Workbook(backend.Snapshot{}); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
