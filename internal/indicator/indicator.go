// Package indicator provides technical indicator calculations over price series.
//
// All functions are pure: they take an ordered price series (oldest first),
// never mutate it, and are total over any non-empty input. Short series
// degrade to defined fallbacks instead of failing, so callers can evaluate
// from the very first tick.
package indicator

// SMA returns the arithmetic mean of the last period points.
// If the series is shorter than period, it returns the mean of all
// available points.
func SMA(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if len(series) < period {
		return mean(series)
	}
	return mean(series[len(series)-period:])
}

func mean(series []float64) float64 {
	var sum float64
	for _, p := range series {
		sum += p
	}
	return sum / float64(len(series))
}
