package main

import (
	"image"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/mixwatch/mixwatch/backend"
	"github.com/mixwatch/mixwatch/format"
	"github.com/mixwatch/mixwatch/plot"
)

// CurvesChart renders each channel's diminishing-returns curve: the
// credible band, the mean response, and vertical markers at the spend
// level where returns start diminishing and where the channel
// saturates.
type CurvesChart struct {
	ds     *Dataset
	list   widget.List
	panels []*curvePanel
}

type curvePanel struct {
	ds    *Dataset
	index int
	hover plot.Hover
	pts   []f32.Point
	upper []f32.Point
	lower []f32.Point
}

func NewCurvesChart(ds *Dataset) *CurvesChart {
	return &CurvesChart{
		ds:   ds,
		list: widget.List{List: layout.List{Axis: layout.Vertical}},
	}
}

func (c *CurvesChart) Layout(gtx C, th *material.Theme) D {
	curves := c.ds.Curves
	if curves == nil || len(curves.Channels) == 0 {
		return layoutPlaceholder(gtx, th, "No data yet.")
	}
	for len(c.panels) < len(curves.Channels) {
		c.panels = append(c.panels, &curvePanel{ds: c.ds, index: len(c.panels)})
	}
	return material.List(th, &c.list).Layout(gtx, len(curves.Channels), func(gtx C, index int) D {
		return c.panels[index].Layout(gtx, th, curves.Channels[index])
	})
}

func (p *curvePanel) Update(gtx C) {
	drainPointer(gtx, p, &p.hover, p.pts)
}

func (p *curvePanel) Layout(gtx C, th *material.Theme, ch backend.ResponseCurveChannel) D {
	p.Update(gtx)
	size := plot.Frame(gtx.Constraints.Max.X, 0, gtx.Dp(220))
	if len(ch.Points) == 0 {
		gtx.Constraints.Max.Y = size.Y
		return layoutPlaceholder(gtx, th, "No data yet.")
	}

	in := plot.DefaultInsets()
	xMin, yMin, xMax, yMax := in.Inner(size)
	spends := make([]float64, len(ch.Points))
	uppers := make([]float64, len(ch.Points))
	for i, pt := range ch.Points {
		spends[i] = pt.Spend
		uppers[i] = pt.Upper
	}
	sMin, sMax := plot.Domain(spends)
	_, vMax := plot.Domain(uppers)
	xScale := plot.Linear(sMin, sMax, float64(xMin), float64(xMax))
	yScale := plot.Linear(0, vMax, float64(yMax), float64(yMin))

	p.pts = p.pts[:0]
	p.upper = p.upper[:0]
	p.lower = p.lower[:0]
	for _, pt := range ch.Points {
		x := float32(xScale(pt.Spend))
		p.pts = append(p.pts, f32.Pt(x, float32(yScale(pt.Mean))))
		p.upper = append(p.upper, f32.Pt(x, float32(yScale(pt.Upper))))
		p.lower = append(p.lower, f32.Pt(x, float32(yScale(pt.Lower))))
	}

	registerPointer(gtx, p, size)
	layoutHorizontalGrid(gtx, xMin, xMax, yMin, yMax, 4)
	fillPath(gtx, plot.Band(p.upper, p.lower), bandColor)
	strokePath(gtx, plot.Line(p.pts), float32(gtx.Dp(2)), accentColor)
	p.layoutReference(gtx, ch.DiminishingReturnsStart, xScale, yMin, yMax)
	p.layoutReference(gtx, ch.SaturationSpend, xScale, yMin, yMax)

	title := material.Body1(th, p.ds.ChannelName(ch.ID))
	_, titleCall := rec(gtx, func(gtx C) D {
		gtx.Constraints.Min = image.Point{}
		return title.Layout(gtx)
	})
	stack := op.Offset(image.Point{X: int(xMin), Y: 0}).Push(gtx.Ops)
	titleCall.Add(gtx.Ops)
	stack.Pop()

	layoutFrameLabels(gtx, th, in, size, frameLabels{
		yMin: "0",
		yMax: format.Compact(vMax),
		xMin: format.Currency(sMin, 0),
		xMax: format.Currency(sMax, 0),
	})

	if idx := p.hover.Index(); idx >= 0 && idx < len(ch.Points) {
		pt := ch.Points[idx]
		layoutHoverOverlay(gtx, th, p.pts[idx], []tooltipRow{
			{text: "spend " + format.Currency(pt.Spend, 0)},
			{text: "outcome " + format.Compact(pt.Mean)},
			{text: format.Compact(pt.Lower) + " - " + format.Compact(pt.Upper)},
		})
	}
	return D{Size: size}
}

// layoutReference draws a 1dp vertical marker at the given spend level.
func (p *curvePanel) layoutReference(gtx C, spend float64, xScale plot.Scale, yMin, yMax float32) {
	if spend <= 0 {
		return
	}
	x := int(xScale(spend))
	paint.FillShape(gtx.Ops, referenceColor, clip.Rect{
		Min: image.Point{X: x, Y: int(yMin)},
		Max: image.Point{X: x + gtx.Dp(1), Y: int(yMax)},
	}.Op())
}
