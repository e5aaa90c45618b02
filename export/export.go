// Package export renders dashboard snapshots into shareable artifacts:
// standalone SVG charts and xlsx workbooks.
package export

import (
	"errors"
	"fmt"
	"strings"

	"gioui.org/f32"
	"github.com/xuri/excelize/v2"

	"github.com/mixwatch/mixwatch/backend"
	"github.com/mixwatch/mixwatch/plot"
)

var ErrNoData = errors.New("snapshot has no data to export")

const (
	accentHex    = "#2b7fa8"
	referenceHex = "#a4633a"
)

var paletteHex = []string{
	"#a4633a",
	"#857625",
	"#51854d",
	"#2b7fa8",
	"#726cae",
	"#975f91",
}

func channelHex(i int) string {
	return paletteHex[i%len(paletteHex)]
}

func svgOpen(b *strings.Builder, w, h int) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)
}

func svgText(b *strings.Builder, x, y float32, anchor, text string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="%s" font-size="12" font-family="sans-serif">%s</text>`+"\n", x, y, anchor, text)
}

// SeriesSVG renders the weekly conversions series as a filled line
// chart.
func SeriesSVG(series *backend.SeriesResponse, width, height int) (string, error) {
	if series == nil || len(series.Points) == 0 {
		return "", ErrNoData
	}
	size := plot.Frame(width, height, 280)
	in := plot.DefaultInsets()
	xMin, yMin, xMax, yMax := in.Inner(size)

	times := make([]float64, len(series.Points))
	values := make([]float64, len(series.Points))
	for i, p := range series.Points {
		times[i] = float64(p.Time.UnixNano())
		values[i] = p.Conversions
	}
	tMin, tMax := times[0], times[len(times)-1]
	vMin, vMax := plot.Domain(values)
	xScale := plot.Linear(tMin, tMax, float64(xMin), float64(xMax))
	yScale := plot.Linear(vMin, vMax, float64(yMax), float64(yMin))

	pts := make([]f32.Point, len(series.Points))
	for i := range series.Points {
		pts[i] = f32.Pt(float32(xScale(times[i])), float32(yScale(values[i])))
	}

	var b strings.Builder
	svgOpen(&b, size.X, size.Y)
	fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-opacity="0.3"/>`+"\n", plot.Area(pts, yMax).SVG(), accentHex)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n", plot.Line(pts).SVG(), accentHex)
	svgText(&b, 2, yMin+4, "start", fmt.Sprintf("%.0f", vMax))
	svgText(&b, 2, yMax, "start", fmt.Sprintf("%.0f", vMin))
	svgText(&b, xMin, yMax+16, "start", series.Points[0].Time.Format("2006-01-02"))
	svgText(&b, xMax, yMax+16, "end", series.Points[len(series.Points)-1].Time.Format("2006-01-02"))
	b.WriteString("</svg>\n")
	return b.String(), nil
}

// BarsSVG renders per-channel total spend as a bar chart.
func BarsSVG(channels []backend.ChannelAggregate, width, height int) (string, error) {
	if len(channels) == 0 {
		return "", ErrNoData
	}
	data := make([]plot.BarDatum, len(channels))
	for i, agg := range channels {
		data[i] = plot.BarDatum{
			Label: agg.Name,
			Value: agg.TotalSpend,
			Color: channelHex(i),
		}
	}
	if err := plot.ValidateBarLabels(data); err != nil {
		return "", err
	}
	size := plot.Frame(width, height, 300)
	in := plot.DefaultInsets()
	xMin, _, xMax, yMax := in.Inner(size)
	values := make([]float64, len(data))
	for i, d := range data {
		values[i] = d.Value
	}
	_, vMax := plot.Domain(values)
	yScale := plot.Linear(0, vMax, float64(yMax), float64(in.Top))

	var b strings.Builder
	svgOpen(&b, size.X, size.Y)
	rects := plot.BarRects(data, xMin, xMax, yMax, yScale)
	for i, r := range rects {
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			r.Min.X, r.Min.Y, r.Max.X-r.Min.X, r.Max.Y-r.Min.Y, data[i].Color)
	}
	for i, r := range rects {
		svgText(&b, (r.Min.X+r.Max.X)/2, yMax+16, "middle", data[i].Label)
	}
	b.WriteString("</svg>\n")
	return b.String(), nil
}

// CurvesSVG renders every channel's response curve with its credible
// band and spend thresholds.
func CurvesSVG(curves *backend.ResponseCurves, width, height int) (string, error) {
	if curves == nil || len(curves.Channels) == 0 {
		return "", ErrNoData
	}
	panelH := 220
	size := plot.Frame(width, height, panelH*len(curves.Channels))
	in := plot.DefaultInsets()

	var b strings.Builder
	svgOpen(&b, size.X, size.Y)
	for ci, ch := range curves.Channels {
		if len(ch.Points) == 0 {
			continue
		}
		offsetY := float32(ci * panelH)
		panel := plot.Frame(size.X, panelH, panelH)
		xMin, yMin, xMax, yMax := in.Inner(panel)
		yMin += offsetY
		yMax += offsetY

		spends := make([]float64, len(ch.Points))
		uppers := make([]float64, len(ch.Points))
		for i, p := range ch.Points {
			spends[i] = p.Spend
			uppers[i] = p.Upper
		}
		sMin, sMax := plot.Domain(spends)
		_, vMax := plot.Domain(uppers)
		xScale := plot.Linear(sMin, sMax, float64(xMin), float64(xMax))
		yScale := plot.Linear(0, vMax, float64(yMax), float64(yMin))

		mean := make([]f32.Point, len(ch.Points))
		upper := make([]f32.Point, len(ch.Points))
		lower := make([]f32.Point, len(ch.Points))
		for i, p := range ch.Points {
			x := float32(xScale(p.Spend))
			mean[i] = f32.Pt(x, float32(yScale(p.Mean)))
			upper[i] = f32.Pt(x, float32(yScale(p.Upper)))
			lower[i] = f32.Pt(x, float32(yScale(p.Lower)))
		}
		fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-opacity="0.3"/>`+"\n", plot.Band(upper, lower).SVG(), channelHex(ci))
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n", plot.Line(mean).SVG(), channelHex(ci))
		for _, threshold := range []float64{ch.DiminishingReturnsStart, ch.SaturationSpend} {
			if threshold <= 0 {
				continue
			}
			x := xScale(threshold)
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 2"/>`+"\n",
				x, yMin, x, yMax, referenceHex)
		}
		svgText(&b, xMin, yMin-6, "start", ch.Name)
	}
	b.WriteString("</svg>\n")
	return b.String(), nil
}

// Workbook assembles a full snapshot into an xlsx workbook with one
// sheet per payload.
func Workbook(snap backend.Snapshot) (*excelize.File, error) {
	if snap.National == nil && snap.Summary == nil && len(snap.Channels) == 0 {
		return nil, ErrNoData
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	if snap.Summary != nil {
		setRow(f, "Summary", 1, "Metric", "Value", "Unit")
		for i, m := range snap.Summary.Metrics {
			setRow(f, "Summary", i+2, m.Label, m.Value, m.Unit)
		}
		base := len(snap.Summary.Metrics) + 3
		for i, insight := range snap.Summary.Insights {
			setRow(f, "Summary", base+i, insight)
		}
	}
	if snap.National != nil {
		if _, err := f.NewSheet("Series"); err != nil {
			return nil, err
		}
		setRow(f, "Series", 1, "Week", "Conversions", "Revenue/Conversion", "Promo", "Total Spend", "Efficiency")
		for i, p := range snap.National.Points {
			setRow(f, "Series", i+2,
				p.Time.Format("2006-01-02"), p.Conversions, p.RevenuePerConversion,
				p.Promo, p.TotalSpend, p.SpendEfficiency)
		}
	}
	if len(snap.Channels) > 0 {
		if _, err := f.NewSheet("Channels"); err != nil {
			return nil, err
		}
		setRow(f, "Channels", 1, "Channel", "Spend", "Share", "Weekly Spend", "Est. Conversions", "Est. Revenue", "ROAS", "CAC")
		for i, agg := range snap.Channels {
			setRow(f, "Channels", i+2,
				agg.Name, agg.TotalSpend, agg.SpendShare, agg.AverageWeeklySpend,
				agg.EstimatedConversions, agg.EstimatedRevenue, agg.ROAS, agg.CAC)
		}
	}
	if snap.Contributions != nil {
		if _, err := f.NewSheet("Contributions"); err != nil {
			return nil, err
		}
		setRow(f, "Contributions", 1, "Week", "Channel", "Mean", "Lower", "Upper", "Share")
		row := 2
		for _, p := range snap.Contributions.Points {
			for _, ch := range p.Channels {
				setRow(f, "Contributions", row,
					p.Time.Format("2006-01-02"), ch.Name, ch.Mean, ch.Lower, ch.Upper, ch.Share)
				row++
			}
		}
	}
	if snap.Curves != nil {
		if _, err := f.NewSheet("Curves"); err != nil {
			return nil, err
		}
		setRow(f, "Curves", 1, "Channel", "Spend", "Mean", "Lower", "Upper")
		row := 2
		for _, ch := range snap.Curves.Channels {
			for _, p := range ch.Points {
				setRow(f, "Curves", row, ch.Name, p.Spend, p.Mean, p.Lower, p.Upper)
				row++
			}
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cell, v)
	}
}
