package tui

import (
	"strings"
	"testing"

	"pburn/internal/tui/theme"
)

func TestTruncStr(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"alpha", 10, "alpha"},
		{"alphabetical", 6, "alpha…"},
		{"alpha", 0, ""},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tc := range cases {
		if got := truncStr(tc.in, tc.limit); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestPadAndTruncateHeight(t *testing.T) {
	s := "a\nb\nc"

	if got := truncateHeight(s, 2); got != "a\nb" {
		t.Errorf("truncateHeight = %q", got)
	}
	if got := truncateHeight(s, 5); got != s {
		t.Errorf("truncateHeight should not trim short input, got %q", got)
	}

	padded := padHeight(s, 5)
	if lines := strings.Count(padded, "\n") + 1; lines != 5 {
		t.Errorf("padHeight produced %d lines, want 5", lines)
	}
	if got := padHeight(s, 2); got != s {
		t.Errorf("padHeight should not trim tall input, got %q", got)
	}
}

func TestNextThemeName(t *testing.T) {
	first := theme.All[0].Name
	second := theme.All[1%len(theme.All)].Name

	if got := nextThemeName(first); got != second {
		t.Errorf("nextThemeName(%q) = %q, want %q", first, got, second)
	}

	last := theme.All[len(theme.All)-1].Name
	if got := nextThemeName(last); got != first {
		t.Errorf("nextThemeName(%q) = %q, want wraparound to %q", last, got, first)
	}

	if got := nextThemeName("no-such-theme"); got != first {
		t.Errorf("nextThemeName(unknown) = %q, want %q", got, first)
	}
}
