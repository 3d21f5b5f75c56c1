package indicator

// MACDResult holds the MACD line, its signal line, and the histogram.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD returns EMA(fast) − EMA(slow) for the series, with the signal line
// computed as a true EMA of the reconstructed MACD line over signalPeriod.
// Histogram = MACD − signal.
//
// The MACD line is rebuilt point by point so the signal line reflects the
// line's actual trajectory rather than a flat average of its latest value.
func MACD(series []float64, fast, slow, signalPeriod int) MACDResult {
	if len(series) == 0 {
		return MACDResult{}
	}

	fastS := newEMAStream(fast)
	slowS := newEMAStream(slow)
	line := make([]float64, len(series))
	for i, p := range series {
		line[i] = fastS.update(p) - slowS.update(p)
	}

	macd := line[len(line)-1]
	signal := EMA(line, signalPeriod)
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}
