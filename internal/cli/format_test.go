package cli

import (
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{9.5, "$9.50"},
		{12.34, "$12.3"},
		{250, "$250"},
		{1234567.8, "$1,234,568"},
		{-1500, "-$1,500"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.802); got != "80.2%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(-0.2); got != "-20.0%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(150, 100); got != "+$50.0" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatDelta(100, 150); got != "-$50.0" {
		t.Errorf("FormatDelta = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2025-03-09" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "—" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("empty input = %q, want empty", got)
	}

	got := RenderSparkline([]float64{0, 50, 100})
	runes := []rune(got)
	if len(runes) != 3 {
		t.Fatalf("len = %d, want 3", len(runes))
	}
	if runes[0] != '▁' || runes[2] != '█' {
		t.Errorf("sparkline = %q, want min..max ramp", got)
	}

	// All zeros must not divide by zero.
	flat := RenderSparkline([]float64{0, 0, 0})
	if len([]rune(flat)) != 3 {
		t.Errorf("flat sparkline = %q", flat)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	if got := RenderHorizontalBar(5, 10, 10); len([]rune(got)) != 5 {
		t.Errorf("bar = %q, want 5 cells", got)
	}
	if got := RenderHorizontalBar(20, 10, 10); len([]rune(got)) != 10 {
		t.Errorf("bar = %q, want clamp at width", got)
	}
	if got := RenderHorizontalBar(5, 0, 10); got != "" {
		t.Errorf("bar = %q, want empty for zero max", got)
	}
}
