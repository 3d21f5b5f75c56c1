package indicator

// RSI returns the Relative Strength Index over the last period deltas,
// using simple (non-Wilder-smoothed) averaging of gains and losses.
// Returns the neutral value 50 when fewer than period+1 points exist,
// and 100 when the average loss is exactly zero.
func RSI(series []float64, period int) float64 {
	if len(series) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := len(series) - period; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
