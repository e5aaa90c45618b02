package main

import (
	"fmt"
	"image"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget/material"
	"gioui.org/x/component"

	"github.com/mixwatch/mixwatch/format"
)

// ChannelTable lists every channel's modeled aggregates.
type ChannelTable struct {
	ds    *Dataset
	table component.GridState
}

func NewChannelTable(ds *Dataset) *ChannelTable {
	return &ChannelTable{ds: ds}
}

var channelColumns = []string{
	"Channel",
	"Spend",
	"Share",
	"Weekly",
	"Est. Conversions",
	"Est. Revenue",
	"ROAS",
	"CAC",
}

func (c *ChannelTable) cellText(row, col int) string {
	agg := c.ds.Channels[row]
	switch col {
	case 0:
		return agg.Name
	case 1:
		return format.Currency(agg.TotalSpend, 0)
	case 2:
		return format.Percent(agg.SpendShare, 1)
	case 3:
		return format.Currency(agg.AverageWeeklySpend, 0)
	case 4:
		return format.Compact(agg.EstimatedConversions)
	case 5:
		return format.Currency(agg.EstimatedRevenue, 0)
	case 6:
		return fmt.Sprintf("%.2fx", agg.ROAS)
	case 7:
		return format.Currency(agg.CAC, 2)
	default:
		return ""
	}
}

func (c *ChannelTable) Layout(gtx C, th *material.Theme) D {
	if len(c.ds.Channels) == 0 {
		return layoutPlaceholder(gtx, th, "No data yet.")
	}
	tbl := component.Table(th, &c.table)
	longest := material.Body1(th, "Est. Conversions")
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	longestDims, _ := rec(gtx, func(gtx C) D {
		return layout.UniformInset(2).Layout(gtx, longest.Layout)
	})
	flexedColumns := 1
	rigidColumns := len(channelColumns) - flexedColumns
	gtx.Constraints = origConstraints
	return tbl.Layout(gtx, len(c.ds.Channels), len(channelColumns),
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(longestDims.Size.Y, constraint)
			}
			if index == 0 {
				return (constraint - (longestDims.Size.X * rigidColumns)) / flexedColumns
			}
			return longestDims.Size.X
		},
		func(gtx C, index int) D {
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					l := material.Body1(th, channelColumns[index])
					l.MaxLines = 1
					l.Color = th.ContrastFg
					if index > 0 {
						l.Alignment = text.End
					}
					return l.Layout(gtx)
				},
			)
		},
		func(gtx C, row, col int) D {
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					bg := channelColor(row)
					bg.A = 30
					if row&1 == 0 {
						bg.A += 30
					}
					paint.FillShape(gtx.Ops, bg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					l := material.Body1(th, c.cellText(row, col))
					l.MaxLines = 1
					if col > 0 {
						l.Alignment = text.End
					}
					return l.Layout(gtx)
				},
			)
		},
	)
}
