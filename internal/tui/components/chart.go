package components

import (
	"fmt"
	"strings"

	"pburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// BarRow is one entry of a horizontal bar list.
type BarRow struct {
	Label string
	Value float64
	Text  string // rendered to the right of the bar
	Color lipgloss.Color
}

// HorizontalBars renders labeled horizontal bars scaled to the largest value.
// labelW fixes the label column; barW is the maximum bar length in cells.
func HorizontalBars(rows []BarRow, labelW, barW int) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	maxVal := 0.0
	for _, r := range rows {
		if r.Value > maxVal {
			maxVal = r.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	trackStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}

		filled := int(r.Value / maxVal * float64(barW))
		if filled > barW {
			filled = barW
		}
		if filled < 0 {
			filled = 0
		}

		barStyle := lipgloss.NewStyle().Foreground(r.Color).Background(t.Surface)

		label := r.Label
		if len(label) > labelW {
			label = label[:labelW-1] + "…"
		}

		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)))
		b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		b.WriteString(trackStyle.Render(strings.Repeat("░", barW-filled)))
		if r.Text != "" {
			b.WriteString(textStyle.Render(" " + r.Text))
		}
	}

	return b.String()
}
