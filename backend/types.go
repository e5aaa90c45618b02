// Package backend fetches marketing-mix analytics from the API (or a
// local snapshot file) and streams typed results into the UI.
package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day crossing the wire as "YYYY-MM-DD". Decoding
// rejects malformed values so an invalid instant can never reach a
// scale as a non-numeric coordinate.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("malformed date: %w", err)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("malformed date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// ChannelPoint is one channel's activity within a single period.
type ChannelPoint struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Spend              float64 `json:"spend"`
	Impressions        float64 `json:"impressions"`
	OrganicImpressions float64 `json:"organic_impressions,omitempty"`
}

// MetricPoint is one period of the national or per-geo time series.
type MetricPoint struct {
	Time                 Date           `json:"time"`
	Conversions          float64        `json:"conversions"`
	RevenuePerConversion float64        `json:"revenue_per_conversion"`
	Promo                float64        `json:"promo"`
	Channels             []ChannelPoint `json:"channels"`
	TotalSpend           float64        `json:"total_spend"`
	SpendEfficiency      float64        `json:"spend_efficiency"`
	LiftVsPrev           float64        `json:"lift_vs_prev"`
}

// SeriesResponse is the national series, or a geo series when Geo is set.
type SeriesResponse struct {
	Geo    string        `json:"geo,omitempty"`
	Start  Date          `json:"start"`
	End    Date          `json:"end"`
	Points []MetricPoint `json:"points"`
}

// GeoListItem describes one geography available for filtering.
type GeoListItem struct {
	Geo        string `json:"geo"`
	Start      Date   `json:"start"`
	End        Date   `json:"end"`
	SampleSize int    `json:"sample_size"`
}

// ChannelAggregate is one channel's totals over the modeled window.
type ChannelAggregate struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	TotalSpend           float64 `json:"total_spend"`
	TotalImpressions     float64 `json:"total_impressions"`
	SpendShare           float64 `json:"spend_share"`
	AverageWeeklySpend   float64 `json:"average_weekly_spend"`
	EstimatedConversions float64 `json:"estimated_conversions"`
	EstimatedRevenue     float64 `json:"estimated_revenue"`
	ROAS                 float64 `json:"roas"`
	CAC                  float64 `json:"cac"`
}

// SummaryMetric is one headline figure for the dashboard header.
type SummaryMetric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Summary struct {
	Metrics  []SummaryMetric `json:"metrics"`
	Insights []string        `json:"insights"`
}

// ContributionInterval is one channel's incremental outcome within a
// period, with its credible interval.
type ContributionInterval struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Share float64 `json:"share"`
}

type ContributionPoint struct {
	Time       Date                   `json:"time"`
	TotalMean  float64                `json:"total_mean"`
	TotalLower float64                `json:"total_lower"`
	TotalUpper float64                `json:"total_upper"`
	Channels   []ContributionInterval `json:"channels"`
}

type ContributionSeries struct {
	Start  Date                `json:"start"`
	End    Date                `json:"end"`
	Points []ContributionPoint `json:"points"`
}

// ResponseCurvePoint is one evaluation of a channel's diminishing-returns
// curve: estimated incremental outcome at a spend level, with bounds.
type ResponseCurvePoint struct {
	Spend float64 `json:"spend"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ResponseCurveChannel carries a channel's curve plus the two annotated
// spend thresholds rendered as vertical reference lines.
type ResponseCurveChannel struct {
	ID                      string               `json:"id"`
	Name                    string               `json:"name"`
	Points                  []ResponseCurvePoint `json:"points"`
	SaturationSpend         float64              `json:"saturation_spend"`
	DiminishingReturnsStart float64              `json:"diminishing_returns_start"`
}

type ResponseCurves struct {
	Channels []ResponseCurveChannel `json:"channels"`
}

// ScenarioRequest asks the model to reallocate a fraction of one
// channel's budget to another.
type ScenarioRequest struct {
	SourceChannel string  `json:"source_channel"`
	TargetChannel string  `json:"target_channel"`
	ShiftRatio    float64 `json:"shift_ratio"`
}

type ScenarioChannelProjection struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Spend                float64 `json:"spend"`
	EstimatedConversions float64 `json:"estimated_conversions"`
	EstimatedRevenue     float64 `json:"estimated_revenue"`
	ROAS                 float64 `json:"roas"`
	CAC                  float64 `json:"cac"`
}

type ScenarioResponse struct {
	TotalSpend           float64                     `json:"total_spend"`
	ProjectedConversions float64                     `json:"projected_conversions"`
	ProjectedRevenue     float64                     `json:"projected_revenue"`
	DeltaConversions     float64                     `json:"delta_conversions"`
	DeltaRevenue         float64                     `json:"delta_revenue"`
	Channels             []ScenarioChannelProjection `json:"channels"`
}

type Mode uint8

const (
	ModeNone Mode = iota
	ModeLive
	ModeReplaying
)

// Snapshot bundles everything one dashboard render needs. Sessions emit
// it progressively as each payload arrives; Err carries the first fetch
// failure while the remaining panels keep whatever data they have.
type Snapshot struct {
	ID            string              `json:"-"`
	Mode          Mode                `json:"-"`
	Geo           string              `json:"geo,omitempty"`
	National      *SeriesResponse     `json:"national,omitempty"`
	Channels      []ChannelAggregate  `json:"channels,omitempty"`
	Summary       *Summary            `json:"summary,omitempty"`
	Contributions *ContributionSeries `json:"contributions,omitempty"`
	Curves        *ResponseCurves     `json:"curves,omitempty"`
	Err           error               `json:"-"`
}

// Initialized reports whether enough data has arrived to leave the
// start screen.
func (s Snapshot) Initialized() bool {
	return s.National != nil && len(s.National.Points) > 0
}
