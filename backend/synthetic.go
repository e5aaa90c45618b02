package backend

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// SyntheticDataset is a deterministic fake of the whole marketing-mix
// API, used by the mock server and by tests. The same seed always
// produces the same dataset.
type SyntheticDataset struct {
	National *SeriesResponse
	Geos     map[string]*SeriesResponse
	GeoItems []GeoListItem
	Channels []ChannelAggregate
	Summary  *Summary
	Curves   *ResponseCurves

	contributions *ContributionSeries
}

type syntheticChannel struct {
	id   string
	name string
	// roi scales how much a unit of spend moves conversions; k sets
	// how quickly the channel saturates.
	roi float64
	k   float64
}

var syntheticChannels = []syntheticChannel{
	{id: "channel0", name: "Channel 0", roi: 0.012, k: 90000},
	{id: "channel1", name: "Channel 1", roi: 0.009, k: 60000},
	{id: "channel2", name: "Channel 2", roi: 0.015, k: 40000},
	{id: "channel3", name: "Channel 3", roi: 0.006, k: 120000},
	{id: "channel4", name: "Channel 4", roi: 0.010, k: 70000},
}

var syntheticGeos = []struct {
	geo   string
	scale float64
}{
	{"geo_a", 0.42},
	{"geo_b", 0.27},
	{"geo_c", 0.19},
	{"geo_d", 0.12},
}

// smoothWalk returns n values between min and max, biased towards the
// low end, where each value is pulled three quarters of the way toward
// its predecessor so the series moves smoothly.
func smoothWalk(rng *rand.Rand, n int, min, max float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		bias := rng.Float64()
		target := min + math.Pow(bias, 2)*(max-min)
		next := target
		if i > 0 {
			step := (rng.Float64() - 0.5) * (max - min) * 0.1
			next = values[i-1] + step
			next = (next*3 + target) / 4
		}
		if next < min {
			next = min
		}
		if next > max {
			next = max
		}
		values[i] = next
	}
	return values
}

func saturated(spend, roi, k float64) float64 {
	return roi * k * (1 - math.Exp(-spend/k))
}

// NewSyntheticDataset builds weeks of weekly national and per-geo data
// starting from start, plus every derived payload.
func NewSyntheticDataset(seed int64, weeks int) *SyntheticDataset {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)

	spendWalks := make([][]float64, len(syntheticChannels))
	for i := range syntheticChannels {
		lo := 20000 + float64(i)*8000
		spendWalks[i] = smoothWalk(rng, weeks, lo, lo*4)
	}
	organicWalk := smoothWalk(rng, weeks, 50000, 200000)
	revenueWalk := smoothWalk(rng, weeks, 48, 68)

	points := make([]MetricPoint, weeks)
	prevConversions := 0.0
	for w := 0; w < weeks; w++ {
		day := start.AddDate(0, 0, w*7)
		promo := 0.0
		if w%6 == 5 {
			promo = 1
		}
		channels := make([]ChannelPoint, len(syntheticChannels))
		totalSpend := 0.0
		conversions := 4000.0
		for i, ch := range syntheticChannels {
			spend := spendWalks[i][w]
			totalSpend += spend
			conversions += saturated(spend, ch.roi, ch.k)
			cp := ChannelPoint{
				ID:          ch.id,
				Name:        ch.name,
				Spend:       spend,
				Impressions: spend * (180 + rng.Float64()*40),
			}
			if i == 0 {
				cp.OrganicImpressions = organicWalk[w]
			}
			channels[i] = cp
		}
		conversions *= 1 + promo*0.15
		conversions *= 1 + (rng.Float64()-0.5)*0.06
		lift := 0.0
		if prevConversions > 0 {
			lift = (conversions - prevConversions) / prevConversions
		}
		prevConversions = conversions
		points[w] = MetricPoint{
			Time:                 Date{day},
			Conversions:          conversions,
			RevenuePerConversion: revenueWalk[w],
			Promo:                promo,
			Channels:             channels,
			TotalSpend:           totalSpend,
			SpendEfficiency:      conversions / totalSpend,
			LiftVsPrev:           lift,
		}
	}

	ds := &SyntheticDataset{
		National: &SeriesResponse{
			Start:  points[0].Time,
			End:    points[weeks-1].Time,
			Points: points,
		},
		Geos: make(map[string]*SeriesResponse, len(syntheticGeos)),
	}
	for _, g := range syntheticGeos {
		geoPoints := make([]MetricPoint, weeks)
		for w, p := range points {
			gp := p
			gp.Conversions = p.Conversions * g.scale * (1 + (rng.Float64()-0.5)*0.1)
			gp.TotalSpend = p.TotalSpend * g.scale
			gp.SpendEfficiency = gp.Conversions / gp.TotalSpend
			gp.Channels = make([]ChannelPoint, len(p.Channels))
			for i, cp := range p.Channels {
				cp.Spend *= g.scale
				cp.Impressions *= g.scale
				cp.OrganicImpressions *= g.scale
				gp.Channels[i] = cp
			}
			geoPoints[w] = gp
		}
		ds.Geos[g.geo] = &SeriesResponse{
			Geo:    g.geo,
			Start:  points[0].Time,
			End:    points[weeks-1].Time,
			Points: geoPoints,
		}
		ds.GeoItems = append(ds.GeoItems, GeoListItem{
			Geo:        g.geo,
			Start:      points[0].Time,
			End:        points[weeks-1].Time,
			SampleSize: weeks,
		})
	}

	ds.computeAggregates()
	ds.computeContributions(rng)
	ds.computeCurves()
	return ds
}

func (ds *SyntheticDataset) totals() (spend, conversions, revenue float64) {
	for _, p := range ds.National.Points {
		spend += p.TotalSpend
		conversions += p.Conversions
		revenue += p.Conversions * p.RevenuePerConversion
	}
	return spend, conversions, revenue
}

func (ds *SyntheticDataset) computeAggregates() {
	totalSpend, totalConversions, totalRevenue := ds.totals()
	weeks := len(ds.National.Points)

	ds.Channels = make([]ChannelAggregate, len(syntheticChannels))
	for i, ch := range syntheticChannels {
		var spend, impressions float64
		for _, p := range ds.National.Points {
			spend += p.Channels[i].Spend
			impressions += p.Channels[i].Impressions
		}
		share := spend / totalSpend
		estConversions := totalConversions * share
		estRevenue := totalRevenue * share
		agg := ChannelAggregate{
			ID:                   ch.id,
			Name:                 ch.name,
			TotalSpend:           spend,
			TotalImpressions:     impressions,
			SpendShare:           share,
			AverageWeeklySpend:   spend / float64(weeks),
			EstimatedConversions: estConversions,
			EstimatedRevenue:     estRevenue,
		}
		if spend > 0 {
			agg.ROAS = estRevenue / spend
		}
		if estConversions > 0 {
			agg.CAC = spend / estConversions
		}
		ds.Channels[i] = agg
	}

	promoWeeks := 0
	for _, p := range ds.National.Points {
		if p.Promo > 0 {
			promoWeeks++
		}
	}
	last := ds.National.Points[weeks-1]
	top := ds.Channels[0]
	bestROAS := ds.Channels[0]
	for _, agg := range ds.Channels[1:] {
		if agg.SpendShare > top.SpendShare {
			top = agg
		}
		if agg.ROAS > bestROAS.ROAS {
			bestROAS = agg
		}
	}
	liftPhrase := fmt.Sprintf("Conversions increased %.1f%% WoW", last.LiftVsPrev*100)
	if last.LiftVsPrev < 0 {
		liftPhrase = fmt.Sprintf("Conversions decreased %.1f%% WoW", -last.LiftVsPrev*100)
	}
	ds.Summary = &Summary{
		Metrics: []SummaryMetric{
			{Label: "Total Spend", Value: totalSpend, Unit: "usd"},
			{Label: "Total Conversions", Value: totalConversions, Unit: "count"},
			{Label: "Total Revenue", Value: totalRevenue, Unit: "usd"},
			{Label: "ROAS", Value: totalRevenue / totalSpend, Unit: "ratio"},
			{Label: "CAC", Value: totalSpend / totalConversions, Unit: "usd"},
			{Label: "Promo Rate", Value: float64(promoWeeks) / float64(weeks), Unit: "percent"},
		},
		Insights: []string{
			fmt.Sprintf("%s represents %.0f%% of media spend.", top.Name, top.SpendShare*100),
			fmt.Sprintf("%s currently delivers ROAS %.2fx.", bestROAS.Name, bestROAS.ROAS),
			liftPhrase,
		},
	}
}

func (ds *SyntheticDataset) computeContributions(rng *rand.Rand) {
	points := make([]ContributionPoint, len(ds.National.Points))
	for w, p := range ds.National.Points {
		channels := make([]ContributionInterval, len(syntheticChannels))
		totalMean, totalLower, totalUpper := 0.0, 0.0, 0.0
		for i, ch := range syntheticChannels {
			mean := saturated(p.Channels[i].Spend, ch.roi, ch.k)
			width := 0.12 + rng.Float64()*0.08
			channels[i] = ContributionInterval{
				ID:    ch.id,
				Name:  ch.name,
				Mean:  mean,
				Lower: mean * (1 - width),
				Upper: mean * (1 + width),
			}
			totalMean += mean
			totalLower += channels[i].Lower
			totalUpper += channels[i].Upper
		}
		for i := range channels {
			if totalMean > 0 {
				channels[i].Share = channels[i].Mean / totalMean
			}
		}
		points[w] = ContributionPoint{
			Time:       p.Time,
			TotalMean:  totalMean,
			TotalLower: totalLower,
			TotalUpper: totalUpper,
			Channels:   channels,
		}
	}
	ds.contributions = &ContributionSeries{
		Start:  ds.National.Start,
		End:    ds.National.End,
		Points: points,
	}
}

// Contributions narrows the contribution series to the requested window.
func (ds *SyntheticDataset) Contributions(q RangeQuery) *ContributionSeries {
	points := ds.contributions.Points
	filtered := make([]ContributionPoint, 0, len(points))
	for _, p := range points {
		if !inRange(p.Time, q) {
			continue
		}
		filtered = append(filtered, p)
	}
	out := &ContributionSeries{Points: filtered}
	if len(filtered) > 0 {
		out.Start = filtered[0].Time
		out.End = filtered[len(filtered)-1].Time
	}
	return out
}

func (ds *SyntheticDataset) computeCurves() {
	const steps = 50
	curves := make([]ResponseCurveChannel, len(syntheticChannels))
	for i, ch := range syntheticChannels {
		avgSpend := ds.Channels[i].AverageWeeklySpend
		points := make([]ResponseCurvePoint, steps)
		spends := make([]float64, steps)
		means := make([]float64, steps)
		for s := 0; s < steps; s++ {
			spend := avgSpend * 2 * float64(s) / float64(steps-1)
			mean := saturated(spend, ch.roi, ch.k)
			spends[s] = spend
			means[s] = mean
			points[s] = ResponseCurvePoint{
				Spend: spend,
				Mean:  mean,
				Lower: mean * 0.85,
				Upper: mean * 1.15,
			}
		}
		curves[i] = ResponseCurveChannel{
			ID:                      ch.id,
			Name:                    ch.name,
			Points:                  points,
			SaturationSpend:         saturationSpend(spends, means),
			DiminishingReturnsStart: diminishingReturnsStart(spends, means),
		}
	}
	ds.Curves = &ResponseCurves{Channels: curves}
}

// saturationSpend is the spend level where return on spend first drops
// to half of its initial value.
func saturationSpend(spends, means []float64) float64 {
	if len(spends) < 2 {
		return 0
	}
	initial := means[1] / (spends[1] + 1e-10)
	for i := 1; i < len(spends); i++ {
		roi := means[i] / (spends[i] + 1e-10)
		if roi <= initial*0.5 {
			return spends[i]
		}
	}
	return spends[len(spends)-1]
}

// diminishingReturnsStart is the spend level where the curve's second
// difference first turns negative.
func diminishingReturnsStart(spends, means []float64) float64 {
	for i := 2; i < len(means); i++ {
		second := means[i] - 2*means[i-1] + means[i-2]
		if second < 0 {
			return spends[i]
		}
	}
	if len(spends) > 0 {
		return spends[0]
	}
	return 0
}

func inRange(d Date, q RangeQuery) bool {
	if q.Start != "" {
		if start, err := time.Parse(dateLayout, q.Start); err == nil && d.Before(start) {
			return false
		}
	}
	if q.End != "" {
		if end, err := time.Parse(dateLayout, q.End); err == nil && d.After(end) {
			return false
		}
	}
	return true
}

// FilterSeries narrows a series to the query's window and channel
// subset without mutating the dataset.
func FilterSeries(src *SeriesResponse, q RangeQuery) *SeriesResponse {
	allowed := map[string]bool{}
	for _, c := range q.Channels {
		allowed[c] = true
	}
	out := &SeriesResponse{Geo: src.Geo}
	for _, p := range src.Points {
		if !inRange(p.Time, q) {
			continue
		}
		if len(allowed) > 0 {
			kept := make([]ChannelPoint, 0, len(p.Channels))
			for _, cp := range p.Channels {
				if allowed[cp.ID] {
					kept = append(kept, cp)
				}
			}
			p.Channels = kept
		}
		out.Points = append(out.Points, p)
	}
	if len(out.Points) > 0 {
		out.Start = out.Points[0].Time
		out.End = out.Points[len(out.Points)-1].Time
	}
	return out
}

var (
	ErrSameChannel    = errors.New("source and target must differ")
	ErrBadShiftRatio  = errors.New("shift ratio must be between 0 and 0.5")
	ErrUnknownChannel = errors.New("unknown channel supplied")
	ErrNoSpend        = errors.New("source channel has no spend to shift")
)

// SimulateShift reallocates a fraction of the source channel's budget
// to the target channel and re-derives every projection from the new
// spend shares.
func (ds *SyntheticDataset) SimulateShift(req ScenarioRequest) (*ScenarioResponse, error) {
	if req.SourceChannel == req.TargetChannel {
		return nil, ErrSameChannel
	}
	if req.ShiftRatio < 0 || req.ShiftRatio > 0.5 {
		return nil, ErrBadShiftRatio
	}
	spends := make(map[string]float64, len(ds.Channels))
	names := make(map[string]string, len(ds.Channels))
	order := make([]string, 0, len(ds.Channels))
	for _, agg := range ds.Channels {
		spends[agg.ID] = agg.TotalSpend
		names[agg.ID] = agg.Name
		order = append(order, agg.ID)
	}
	if _, ok := spends[req.SourceChannel]; !ok {
		return nil, ErrUnknownChannel
	}
	if _, ok := spends[req.TargetChannel]; !ok {
		return nil, ErrUnknownChannel
	}
	if spends[req.SourceChannel] <= 0 {
		return nil, ErrNoSpend
	}
	amount := spends[req.SourceChannel] * req.ShiftRatio
	spends[req.SourceChannel] -= amount
	spends[req.TargetChannel] += amount

	totalSpend := 0.0
	for _, s := range spends {
		totalSpend += s
	}
	_, totalConversions, totalRevenue := ds.totals()

	resp := &ScenarioResponse{TotalSpend: totalSpend}
	for _, id := range order {
		spend := spends[id]
		share := spend / totalSpend
		proj := ScenarioChannelProjection{
			ID:                   id,
			Name:                 names[id],
			Spend:                spend,
			EstimatedConversions: totalConversions * share,
			EstimatedRevenue:     totalRevenue * share,
		}
		if spend > 0 {
			proj.ROAS = proj.EstimatedRevenue / spend
		}
		if proj.EstimatedConversions > 0 {
			proj.CAC = spend / proj.EstimatedConversions
		}
		resp.Channels = append(resp.Channels, proj)
		resp.ProjectedConversions += proj.EstimatedConversions
		resp.ProjectedRevenue += proj.EstimatedRevenue
	}
	resp.DeltaConversions = resp.ProjectedConversions - totalConversions
	resp.DeltaRevenue = resp.ProjectedRevenue - totalRevenue
	return resp, nil
}

// Snapshot assembles the full dataset into one replayable snapshot.
func (ds *SyntheticDataset) Snapshot() Snapshot {
	return Snapshot{
		National:      ds.National,
		Channels:      ds.Channels,
		Summary:       ds.Summary,
		Contributions: ds.contributions,
		Curves:        ds.Curves,
	}
}
