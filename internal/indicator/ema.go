package indicator

// EMA returns the exponential moving average of the series.
// It seeds with the simple average of the first period points, then applies
// the smoothing factor k = 2/(period+1) over the remainder. A series shorter
// than period degrades to the mean of the whole series.
func EMA(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if len(series) < period {
		return mean(series)
	}

	k := 2.0 / float64(period+1)
	ema := mean(series[:period])
	for _, p := range series[period:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// emaStream computes the same value as EMA for every prefix of a series,
// one point at a time. Used to reconstruct indicator series (e.g. the MACD
// line) without rescanning.
type emaStream struct {
	period int
	k      float64
	count  int
	sum    float64
	cur    float64
}

func newEMAStream(period int) *emaStream {
	return &emaStream{period: period, k: 2.0 / float64(period+1)}
}

func (s *emaStream) update(price float64) float64 {
	s.count++
	if s.count <= s.period {
		// Seed phase: value is the running mean, matching EMA's short-series
		// fallback for every prefix.
		s.sum += price
		s.cur = s.sum / float64(s.count)
		return s.cur
	}
	s.cur = price*s.k + s.cur*(1-s.k)
	return s.cur
}
