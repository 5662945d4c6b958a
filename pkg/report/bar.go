package report

import "strings"

// Bar characters.
const (
	barFilled = "█"
	barEmpty  = "░"
)

// Bar draws a bar of the given width for a percentage in [0, 100].
// Out-of-range values are clamped.
// Example: Bar(70, 10) returns "███████░░░".
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}

	percent = max(0, min(percent, percentMultiplier))

	filled := int(percent / percentMultiplier * float64(width))

	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
}
