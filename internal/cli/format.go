// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CurrencySymbol prefixes money values. Set once at startup from config.
var CurrencySymbol = "$"

// FormatMoney formats a monetary value with thousands separators.
// e.g., 1234567.8 -> "$1,234,568", 12.34 -> "$12.34"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	if v >= 1000 {
		return CurrencySymbol + FormatNumber(int64(math.Round(v)))
	}
	if v >= 100 {
		return fmt.Sprintf("%s%.0f", CurrencySymbol, v)
	}
	if v >= 10 {
		return fmt.Sprintf("%s%.1f", CurrencySymbol, v)
	}
	return fmt.Sprintf("%s%.2f", CurrencySymbol, v)
}

// FormatPercent formats a 0-1 fraction as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatScore formats a risk score with one decimal.
func FormatScore(s float64) string {
	return fmt.Sprintf("%.1f", s)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDelta formats a money delta with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

// FormatDate renders a calendar date, or a dash for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}

// FormatDays renders a day count as "Nd".
func FormatDays(n int) string {
	return fmt.Sprintf("%dd", n)
}
