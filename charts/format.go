package charts

import (
	"fmt"
	"math"
)

// FormatCurrency renders a value for metric cards, abbreviating thousands
// and millions.
func FormatCurrency(value float64) string {
	if math.IsNaN(value) || value == 0 {
		return "$0.00"
	}

	switch abs := math.Abs(value); {
	case abs >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("$%.1fK", value/1_000)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

// FormatPercentage renders a percentage, accepting both 0-1 ratios and
// 0-100 values.
func FormatPercentage(value float64) string {
	if math.IsNaN(value) {
		return "0.0%"
	}
	if math.Abs(value) <= 1 {
		return fmt.Sprintf("%.1f%%", value*100)
	}
	return fmt.Sprintf("%.1f%%", value)
}
