// Package format renders numbers for chart labels and tooltips. Charts
// treat these purely as func(float64) string values supplied by the
// caller.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Currency formats v as US dollars with thousands separators and at
// least minFrac fraction digits.
func Currency(v float64, minFrac int) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', minFrac, 64)
	whole, frac, _ := strings.Cut(s, ".")
	out := "$" + group(whole)
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Compact formats v with a metric-style suffix: 950 stays 950, 1200
// becomes 1.2K, 3400000 becomes 3.4M.
func Compact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return trimZeros(strconv.FormatFloat(v/1e9, 'f', 1, 64)) + "B"
	case abs >= 1e6:
		return trimZeros(strconv.FormatFloat(v/1e6, 'f', 1, 64)) + "M"
	case abs >= 1e3:
		return trimZeros(strconv.FormatFloat(v/1e3, 'f', 1, 64)) + "K"
	default:
		return trimZeros(strconv.FormatFloat(v, 'f', 1, 64))
	}
}

// Percent formats the ratio v as a percentage with at most maxFrac
// fraction digits: 0.125 becomes "12.5%".
func Percent(v float64, maxFrac int) string {
	return trimZeros(strconv.FormatFloat(v*100, 'f', maxFrac, 64)) + "%"
}

// group inserts a comma every three digits from the right.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
