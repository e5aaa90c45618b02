package main

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/mixwatch/mixwatch/plot"
)

func fillPath(gtx C, p plot.Path, col color.NRGBA) {
	if p.Empty() {
		return
	}
	stack := clip.Outline{
		Path: p.Spec(gtx.Ops),
	}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, col)
	stack.Pop()
}

func strokePath(gtx C, p plot.Path, width float32, col color.NRGBA) {
	if p.Empty() {
		return
	}
	stack := clip.Stroke{
		Path:  p.Spec(gtx.Ops),
		Width: width,
	}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, col)
	stack.Pop()
}

// registerPointer declares the panel rect as a pointer target for tag.
func registerPointer(gtx C, tag event.Tag, size image.Point) {
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)
}

// drainPointer applies this frame's pointer events to the hover state,
// hit-testing against the previous frame's projected points.
func drainPointer(gtx C, tag event.Tag, h *plot.Hover, pts []f32.Point) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: tag,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move,
		})
		if !ok {
			break
		}
		switch ev := ev.(type) {
		case pointer.Event:
			switch ev.Kind {
			case pointer.Enter, pointer.Move:
				h.Move(ev.Position, pts)
			case pointer.Leave, pointer.Cancel:
				h.Leave()
			}
		}
	}
}

// layoutHorizontalGrid draws faint horizontal rules across the inner
// plot rect.
func layoutHorizontalGrid(gtx C, xMin, xMax, yMin, yMax float32, lines int) {
	oneDp := float32(gtx.Dp(1))
	for i := 0; i <= lines; i++ {
		y := yMin + (yMax-yMin)*float32(i)/float32(lines)
		paint.FillShape(gtx.Ops, gridColor, clip.Rect{
			Min: image.Point{X: int(xMin), Y: int(y)},
			Max: image.Point{X: int(xMax), Y: int(y + oneDp)},
		}.Op())
	}
}

type frameLabels struct {
	yMin, yMax, xMin, xMax string
}

// layoutFrameLabels draws the four extent labels into a chart's margin
// area: range extremes along the left edge, domain extremes along the
// bottom.
func layoutFrameLabels(gtx C, th *material.Theme, in plot.Insets, size image.Point, labels frameLabels) {
	xMinF, yMinF, xMaxF, yMaxF := in.Inner(size)
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	place := func(text string, at image.Point, alignRight bool) {
		l := material.Body2(th, text)
		l.MaxLines = 1
		dims, call := rec(gtx, l.Layout)
		if alignRight {
			at.X -= dims.Size.X
		}
		stack := op.Offset(at).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
	place(labels.yMax, image.Point{X: 0, Y: int(yMinF)}, false)
	place(labels.yMin, image.Point{X: 0, Y: int(yMaxF) - gtx.Sp(14)}, false)
	place(labels.xMin, image.Point{X: int(xMinF), Y: int(yMaxF) + gtx.Dp(4)}, false)
	place(labels.xMax, image.Point{X: int(xMaxF), Y: int(yMaxF) + gtx.Dp(4)}, true)
	gtx.Constraints = origConstraints
}

// layoutPlaceholder fills a panel that has no data yet.
func layoutPlaceholder(gtx C, th *material.Theme, msg string) D {
	return layoutCenteredLabel(gtx, material.Body1(th, msg))
}

func layoutCenteredLabel(gtx C, l material.LabelStyle) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
	)
}
