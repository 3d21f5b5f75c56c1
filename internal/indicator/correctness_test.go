package indicator

import (
	"math"
	"testing"
)

// ────────────────────────────────────────────────────────────
// Helper
// ────────────────────────────────────────────────────────────

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// SMA Correctness
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Prices: 100, 102, 104, 103, 105
	// SMA(3) over last 3 = (104+103+105)/3 = 104.0
	prices := []float64{100, 102, 104, 103, 105}
	assertClose(t, "SMA(3)", SMA(prices, 3), 104.0, 0.0001)
}

func TestSMA_ConstantSeries(t *testing.T) {
	prices := []float64{52000, 52000, 52000, 52000, 52000, 52000}
	for _, period := range []int{1, 3, 5, 20} {
		assertClose(t, "SMA const", SMA(prices, period), 52000, 0.0001)
	}
}

func TestSMA_ShortSeriesFallsBackToFullMean(t *testing.T) {
	// 3 points, period 20 → mean of all = (100+104+108)/3 = 104
	prices := []float64{100, 104, 108}
	assertClose(t, "SMA short", SMA(prices, 20), 104.0, 0.0001)
}

func TestSMA_DoesNotMutateInput(t *testing.T) {
	prices := []float64{100, 102, 104, 103, 105}
	want := []float64{100, 102, 104, 103, 105}
	SMA(prices, 3)
	for i := range prices {
		if prices[i] != want[i] {
			t.Fatalf("input mutated at %d: %v", i, prices)
		}
	}
}

// ────────────────────────────────────────────────────────────
// EMA Correctness
// ────────────────────────────────────────────────────────────

func TestEMA_Correctness_Period3(t *testing.T) {
	// EMA(3): k = 2/(3+1) = 0.5
	// Prices: 100, 102, 104, 103, 105
	// Seed = (100+102+104)/3 = 102.0
	// After 103: 103*0.5 + 102.0*0.5 = 102.5
	// After 105: 105*0.5 + 102.5*0.5 = 103.75
	prices := []float64{100, 102, 104, 103, 105}
	assertClose(t, "EMA(3)", EMA(prices, 3), 103.75, 0.0001)
}

func TestEMA_ShortSeriesFallsBackToFullMean(t *testing.T) {
	prices := []float64{100, 110}
	assertClose(t, "EMA short", EMA(prices, 5), 105.0, 0.0001)
}

func TestEMAStream_MatchesEMAForEveryPrefix(t *testing.T) {
	prices := []float64{100, 102, 104, 103, 105, 107, 106, 109, 111, 108}
	s := newEMAStream(3)
	for i, p := range prices {
		got := s.update(p)
		want := EMA(prices[:i+1], 3)
		assertClose(t, "emaStream prefix", got, want, 0.0001)
	}
}

// ────────────────────────────────────────────────────────────
// RSI Correctness
// ────────────────────────────────────────────────────────────

func TestRSI_ShortSeriesReturnsNeutral50(t *testing.T) {
	// period+1 points required; anything less is neutral
	for n := 1; n <= 14; n++ {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 52000 + float64(i)
		}
		assertClose(t, "RSI short", RSI(prices, 14), 50.0, 0.0001)
	}
}

func TestRSI_AllGainsReturns100(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 104, 105}
	assertClose(t, "RSI all gains", RSI(prices, 5), 100.0, 0.0001)
}

func TestRSI_FlatSeriesReturns100(t *testing.T) {
	// Zero deltas → avgLoss == 0 → 100 (division-by-zero guard)
	prices := []float64{100, 100, 100, 100}
	assertClose(t, "RSI flat", RSI(prices, 3), 100.0, 0.0001)
}

func TestRSI_Correctness_Period3(t *testing.T) {
	// Prices: 100, 101, 103, 102, 105
	// Last 3 deltas: +2, -1, +3
	// avgGain = (2+3)/3 = 1.6667, avgLoss = 1/3 = 0.3333
	// RS = 5, RSI = 100 - 100/6 = 83.3333
	prices := []float64{100, 101, 103, 102, 105}
	assertClose(t, "RSI(3)", RSI(prices, 3), 83.3333, 0.001)
}

// ────────────────────────────────────────────────────────────
// Bollinger Bands Correctness
// ────────────────────────────────────────────────────────────

func TestBollinger_KnownSigma(t *testing.T) {
	// Classic population-σ fixture: 2,4,4,4,5,5,7,9 → mean 5, σ = 2
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	b := Bollinger(prices, 8, 2)
	assertClose(t, "middle", b.Middle, 5.0, 0.0001)
	assertClose(t, "upper", b.Upper, 9.0, 0.0001)
	assertClose(t, "lower", b.Lower, 1.0, 0.0001)
}

func TestBollinger_ZeroMultCollapsesToMean(t *testing.T) {
	prices := []float64{100, 102, 104, 103, 105, 107, 106}
	b := Bollinger(prices, 5, 0)
	assertClose(t, "upper==middle", b.Upper, b.Middle, 0.0001)
	assertClose(t, "lower==middle", b.Lower, b.Middle, 0.0001)
}

func TestBollinger_WindowUsesLastPeriodPoints(t *testing.T) {
	// Leading outlier outside the window must not affect the bands
	base := []float64{9999, 100, 102, 104, 103, 105}
	b := Bollinger(base, 5, 2)
	want := Bollinger(base[1:], 5, 2)
	assertClose(t, "middle ignores outlier", b.Middle, want.Middle, 0.0001)
	assertClose(t, "upper ignores outlier", b.Upper, want.Upper, 0.0001)
}

// ────────────────────────────────────────────────────────────
// MACD Correctness
// ────────────────────────────────────────────────────────────

func TestMACD_ConstantSeriesIsZero(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 52000
	}
	r := MACD(prices, 12, 26, 9)
	assertClose(t, "macd", r.MACD, 0, 0.0001)
	assertClose(t, "signal", r.Signal, 0, 0.0001)
	assertClose(t, "histogram", r.Histogram, 0, 0.0001)
}

func TestMACD_HandComputed_SmallPeriods(t *testing.T) {
	// Prices: 1, 2, 3 with fast=1, slow=2, signal=2.
	// Fast EMA (period 1) tracks price exactly: 1, 2, 3.
	// Slow EMA (period 2): 1, 1.5, then 3*(2/3) + 1.5*(1/3) = 2.5.
	// MACD line: 0, 0.5, 0.5 → macd = 0.5.
	// Signal = EMA(line, 2): seed (0+0.5)/2 = 0.25, then 0.5*(2/3)+0.25*(1/3) = 0.41667.
	r := MACD([]float64{1, 2, 3}, 1, 2, 2)
	assertClose(t, "macd", r.MACD, 0.5, 0.0001)
	assertClose(t, "signal", r.Signal, 0.41667, 0.0001)
	assertClose(t, "histogram", r.Histogram, 0.08333, 0.0001)
}

func TestMACD_RisingSeriesIsPositive(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 52000 + float64(i)*10
	}
	r := MACD(prices, 12, 26, 9)
	if r.MACD <= 0 {
		t.Errorf("rising series: macd = %.4f, want > 0", r.MACD)
	}
}

func TestMACD_TotalOnShortSeries(t *testing.T) {
	for n := 1; n < 35; n++ {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 52000 + float64(i)
		}
		MACD(prices, 12, 26, 9) // must not panic
	}
}
