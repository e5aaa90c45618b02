package main

import (
	"time"

	"github.com/mixwatch/mixwatch/backend"
	"github.com/mixwatch/mixwatch/plot"
)

// Dataset is the UI's view of the active snapshot plus the derived
// slices the chart panels plot. Derivations are rebuilt only when a new
// snapshot revision arrives.
type Dataset struct {
	backend.Snapshot

	times       []time.Time
	conversions []float64
	spends      []float64
	buckets     [][]plot.ChannelValue
}

// Set replaces the snapshot and rebuilds the derived slices.
func (d *Dataset) Set(snap backend.Snapshot) {
	d.Snapshot = snap
	d.times = d.times[:0]
	d.conversions = d.conversions[:0]
	d.spends = d.spends[:0]
	d.buckets = d.buckets[:0]
	if snap.National != nil {
		for _, p := range snap.National.Points {
			d.times = append(d.times, p.Time.Time)
			d.conversions = append(d.conversions, p.Conversions)
			d.spends = append(d.spends, p.TotalSpend)
		}
	}
	if snap.Contributions != nil {
		for _, p := range snap.Contributions.Points {
			bucket := make([]plot.ChannelValue, len(p.Channels))
			for i, ch := range p.Channels {
				bucket[i] = plot.ChannelValue{ID: ch.ID, Value: ch.Mean}
			}
			d.buckets = append(d.buckets, bucket)
		}
	}
}

func (d *Dataset) Times() []time.Time     { return d.times }
func (d *Dataset) Conversions() []float64 { return d.conversions }
func (d *Dataset) TotalSpends() []float64 { return d.spends }

func (d *Dataset) ContributionBuckets() [][]plot.ChannelValue {
	return d.buckets
}

// ChannelName resolves a channel ID to its display name, falling back
// to the ID itself.
func (d *Dataset) ChannelName(id string) string {
	for _, agg := range d.Channels {
		if agg.ID == id {
			return agg.Name
		}
	}
	return id
}

// ChannelIndex resolves a channel ID to its palette position.
func (d *Dataset) ChannelIndex(id string) int {
	for i, agg := range d.Channels {
		if agg.ID == id {
			return i
		}
	}
	return 0
}
