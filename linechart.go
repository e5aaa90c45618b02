package main

import (
	"gioui.org/f32"
	"gioui.org/widget/material"

	"github.com/mixwatch/mixwatch/format"
	"github.com/mixwatch/mixwatch/plot"
)

// LineChart plots weekly conversions as a filled line over time.
type LineChart struct {
	ds    *Dataset
	hover plot.Hover
	// pts holds the previous frame's projected points for hit-testing.
	pts []f32.Point
}

func NewLineChart(ds *Dataset) *LineChart {
	return &LineChart{ds: ds}
}

func (c *LineChart) Update(gtx C) {
	drainPointer(gtx, c, &c.hover, c.pts)
}

func (c *LineChart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	times := c.ds.Times()
	conversions := c.ds.Conversions()
	size := plot.Frame(gtx.Constraints.Max.X, 0, gtx.Dp(280))
	if len(times) == 0 {
		gtx.Constraints.Max.Y = size.Y
		return layoutPlaceholder(gtx, th, "No data yet.")
	}

	in := plot.DefaultInsets()
	xMin, yMin, xMax, yMax := in.Inner(size)
	tMin, tMax := plot.TimeDomain(times)
	vMin, vMax := plot.Domain(conversions)
	xScale := plot.Linear(tMin, tMax, float64(xMin), float64(xMax))
	yScale := plot.Linear(vMin, vMax, float64(yMax), float64(yMin))

	c.pts = c.pts[:0]
	for i, t := range times {
		c.pts = append(c.pts, f32.Pt(
			float32(xScale(float64(t.UnixNano()))),
			float32(yScale(conversions[i])),
		))
	}

	registerPointer(gtx, c, size)
	layoutHorizontalGrid(gtx, xMin, xMax, yMin, yMax, 4)
	fillPath(gtx, plot.Area(c.pts, yMax), withAlpha(accentColor, 0x50))
	strokePath(gtx, plot.Line(c.pts), float32(gtx.Dp(2)), accentColor)
	layoutFrameLabels(gtx, th, in, size, frameLabels{
		yMin: format.Compact(vMin),
		yMax: format.Compact(vMax),
		xMin: times[0].Format("2006-01-02"),
		xMax: times[len(times)-1].Format("2006-01-02"),
	})

	if idx := c.hover.Index(); idx >= 0 && idx < len(times) {
		p := c.ds.National.Points[idx]
		layoutHoverOverlay(gtx, th, c.pts[idx], []tooltipRow{
			{text: p.Time.Format("2006-01-02")},
			{text: "conversions " + format.Compact(p.Conversions)},
			{text: "spend " + format.Currency(p.TotalSpend, 0)},
			{text: "lift " + format.Percent(p.LiftVsPrev, 1)},
		})
	}
	return D{Size: size}
}
