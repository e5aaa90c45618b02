package main

import "image/color"

// chartColors is the channel palette. Channels are colored by their
// position in the snapshot so every panel agrees on a channel's hue.
var chartColors = []color.NRGBA{
	{R: 0xa4, G: 0x63, B: 0x3a, A: 0xff},
	{R: 0x85, G: 0x76, B: 0x25, A: 0xff}, //#857625
	{R: 0x51, G: 0x85, B: 0x4d, A: 0xff}, //#51854d
	{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff}, //#2b7fa8
	{R: 0x72, G: 0x6c, B: 0xae, A: 0xff}, //#726cae
	{R: 0x97, G: 0x5f, B: 0x91, A: 0xff}, //975f91
}

var (
	accentColor    = color.NRGBA{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff}
	bandColor      = color.NRGBA{R: 0x2b, G: 0x7f, B: 0xa8, A: 0x50}
	gridColor      = color.NRGBA{A: 50}
	crosshairColor = color.NRGBA{A: 255}
	tooltipBg      = color.NRGBA{R: 255, G: 255, B: 255, A: 150}
	errColor       = color.NRGBA{R: 150, A: 255}
	referenceColor = color.NRGBA{R: 0xa4, G: 0x63, B: 0x3a, A: 0xb0}
)

func channelColor(i int) color.NRGBA {
	return chartColors[i%len(chartColors)]
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
