package indicator

import "math"

// Bands holds the three Bollinger band values.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Bollinger returns {mean + k·σ, mean, mean − k·σ} using the population
// standard deviation over the last period points. A series shorter than
// period uses all available points.
func Bollinger(series []float64, period int, stdDevMult float64) Bands {
	if len(series) == 0 {
		return Bands{}
	}
	window := series
	if len(series) >= period {
		window = series[len(series)-period:]
	}

	m := mean(window)
	var variance float64
	for _, p := range window {
		variance += (p - m) * (p - m)
	}
	variance /= float64(len(window))
	sigma := math.Sqrt(variance)

	return Bands{
		Upper:  m + stdDevMult*sigma,
		Middle: m,
		Lower:  m - stdDevMult*sigma,
	}
}
