package format

import "testing"

func TestCurrency(t *testing.T) {
	type tc struct {
		v       float64
		minFrac int
		want    string
	}
	for _, c := range []tc{
		{0, 0, "$0"},
		{1234.5, 2, "$1,234.50"},
		{1234567, 0, "$1,234,567"},
		{-42.25, 2, "-$42.25"},
		{999, 0, "$999"},
	} {
		if got := Currency(c.v, c.minFrac); got != c.want {
			t.Errorf("Currency(%f, %d) = %q, want %q", c.v, c.minFrac, got, c.want)
		}
	}
}

func TestCompact(t *testing.T) {
	type tc struct {
		v    float64
		want string
	}
	for _, c := range []tc{
		{950, "950"},
		{1200, "1.2K"},
		{3400000, "3.4M"},
		{2500000000, "2.5B"},
		{1000, "1K"},
		{0, "0"},
	} {
		if got := Compact(c.v); got != c.want {
			t.Errorf("Compact(%f) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestPercent(t *testing.T) {
	type tc struct {
		v       float64
		maxFrac int
		want    string
	}
	for _, c := range []tc{
		{0.125, 1, "12.5%"},
		{0.126, 0, "13%"},
		{1, 0, "100%"},
		{0.1, 2, "10%"},
		{-0.05, 1, "-5%"},
	} {
		if got := Percent(c.v, c.maxFrac); got != c.want {
			t.Errorf("Percent(%f, %d) = %q, want %q", c.v, c.maxFrac, got, c.want)
		}
	}
}
