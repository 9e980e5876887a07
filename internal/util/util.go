package util

import (
	"fmt"
	"math"
	"time"

	"nearby/internal/domain/entity"
)

// FormatBytes formats bytes into human readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats duration into human readable format (e.g., "1h30m", "5m10s", "45s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		m := int(duration.Minutes())
		s := int(duration.Seconds()) % 60

		return fmt.Sprintf("%dm%ds", m, s)
	}

	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60

	return fmt.Sprintf("%dh%dm", h, m)
}

// FormatCoords renders a coordinate as "lat, lng" with six decimals.
func FormatCoords(c *entity.Coordinate) string {
	if c == nil {
		return "unknown"
	}
	if !c.Valid() {
		return "invalid"
	}

	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// FormatDistance renders a distance for the place details view, e.g. "1.23 km (1234 m)".
func FormatDistance(meters int) string {
	return fmt.Sprintf("%.2f km (%d m)", float64(meters)/1000, meters)
}

// FormatDistanceShort renders a distance in whole kilometers for result lists.
func FormatDistanceShort(meters int) string {
	return fmt.Sprintf("%d km", int(math.Round(float64(meters)/1000)))
}
