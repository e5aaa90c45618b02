package main

import (
	"fmt"
	"image"

	"gioui.org/f32"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/mixwatch/mixwatch/format"
	"github.com/mixwatch/mixwatch/plot"
)

// BarChart plots total spend per channel. Duplicate channel labels are
// a data fault and surface as an error line instead of a plot.
type BarChart struct {
	ds      *Dataset
	hover   plot.Hover
	data    []plot.BarDatum
	centers []f32.Point
	dataErr string
}

func NewBarChart(ds *Dataset) *BarChart {
	return &BarChart{ds: ds}
}

func (c *BarChart) Update(gtx C) {
	c.data = c.data[:0]
	for _, agg := range c.ds.Channels {
		c.data = append(c.data, plot.BarDatum{
			Label:     agg.Name,
			Value:     agg.TotalSpend,
			Secondary: agg.ROAS,
		})
	}
	c.dataErr = ""
	if err := plot.ValidateBarLabels(c.data); err != nil {
		c.dataErr = err.Error()
	}
	drainPointer(gtx, c, &c.hover, c.centers)
}

func (c *BarChart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	size := plot.Frame(gtx.Constraints.Max.X, 0, gtx.Dp(300))
	if len(c.data) == 0 {
		gtx.Constraints.Max.Y = size.Y
		return layoutPlaceholder(gtx, th, "No data yet.")
	}
	if c.dataErr != "" {
		gtx.Constraints.Max.Y = size.Y
		l := material.Body1(th, c.dataErr)
		l.Color = errColor
		return layoutCenteredLabel(gtx, l)
	}

	in := plot.DefaultInsets()
	xMin, yMin, xMax, yMax := in.Inner(size)
	values := make([]float64, len(c.data))
	for i, d := range c.data {
		values[i] = d.Value
	}
	_, vMax := plot.Domain(values)
	yScale := plot.Linear(0, vMax, float64(yMax), float64(yMin))

	registerPointer(gtx, c, size)
	layoutHorizontalGrid(gtx, xMin, xMax, yMin, yMax, 4)
	rects := plot.BarRects(c.data, xMin, xMax, yMax, yScale)
	for i, r := range rects {
		paint.FillShape(gtx.Ops, channelColor(i), clip.Rect{
			Min: image.Point{X: int(r.Min.X), Y: int(r.Min.Y)},
			Max: image.Point{X: int(r.Max.X), Y: int(r.Max.Y)},
		}.Op())
	}
	c.centers = plot.Centers(rects)
	layoutFrameLabels(gtx, th, in, size, frameLabels{
		yMin: "$0",
		yMax: format.Currency(vMax, 0),
		xMin: c.data[0].Label,
		xMax: c.data[len(c.data)-1].Label,
	})

	if idx := c.hover.Index(); idx >= 0 && idx < len(c.data) {
		agg := c.ds.Channels[idx]
		layoutHoverOverlay(gtx, th, c.centers[idx], []tooltipRow{
			{text: agg.Name, color: idx, withDot: true},
			{text: "spend " + format.Currency(agg.TotalSpend, 0)},
			{text: "share " + format.Percent(agg.SpendShare, 1)},
			{text: fmt.Sprintf("roas %.2fx", agg.ROAS)},
		})
	}
	return D{Size: size}
}
