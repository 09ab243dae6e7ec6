// Package pace formats running metrics for terminal output.
package pace

import (
	"fmt"
	"math"
)

// Km formats a distance, dropping the decimal for whole kilometers.
func Km(km float64) string {
	if km == math.Trunc(km) {
		return fmt.Sprintf("%.0f km", km)
	}
	return fmt.Sprintf("%.1f km", km)
}

// Hours formats a duration given in hours as "1h 05m".
func Hours(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	totalMinutes := int(math.Round(hours * 60))
	h := totalMinutes / 60
	m := totalMinutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// MinPerKm formats a pace in minutes per kilometer as "5:17/km". NaN means
// no run, rendered as a dash.
func MinPerKm(pace float64) string {
	if math.IsNaN(pace) || math.IsInf(pace, 0) {
		return "-"
	}
	totalSeconds := int(math.Round(pace * 60))
	return fmt.Sprintf("%d:%02d/km", totalSeconds/60, totalSeconds%60)
}

// Seconds formats a duration in whole seconds as "1h 05m" / "42m".
func Seconds(seconds int64) string {
	return Hours(float64(seconds) / 3600)
}
