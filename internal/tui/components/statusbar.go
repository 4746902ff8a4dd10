package components

import (
	"fmt"

	"pburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, dataAge string, riskyCount, totalCount int, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"
	if refreshing {
		left = " refreshing..."
	}

	right := ""
	if totalCount > 0 {
		right = fmt.Sprintf("%d/%d at risk  ", riskyCount, totalCount)
	}
	if dataAge != "" {
		right += fmt.Sprintf("Data: %s ", dataAge)
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
