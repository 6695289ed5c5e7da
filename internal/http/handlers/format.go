package handlers

import (
	"fmt"
	"math"
)

// formatDistance renders kilometres with one decimal, e.g. "212.4 km".
func formatDistance(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

// formatDuration renders "N hr" or "N hr M min", rounded to the minute.
func formatDuration(hours float64) string {
	total := int(math.Round(hours * 60))
	if total < 0 {
		total = 0
	}
	h, m := total/60, total%60
	if m == 0 {
		return fmt.Sprintf("%d hr", h)
	}
	return fmt.Sprintf("%d hr %d min", h, m)
}
