package domain

import "fmt"

// CalculatingLabel is shown until the first progress tick
const CalculatingLabel = "Calculating…"

// RemainingEstimate renders the time left for a download at the given
// progress, assuming every percent takes secondsPerPercent seconds.
func RemainingEstimate(progress, secondsPerPercent int) string {
	remaining := 100 - progress
	if remaining < 0 {
		remaining = 0
	}
	seconds := remaining * secondsPerPercent
	if seconds < 60 {
		return fmt.Sprintf("%d sec left", seconds)
	}
	minutes := (seconds + 59) / 60
	return fmt.Sprintf("%d min left", minutes)
}
