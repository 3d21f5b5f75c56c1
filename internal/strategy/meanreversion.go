package strategy

import (
	"github.com/akashpant12/banknifty-trading/internal/indicator"
	"github.com/akashpant12/banknifty-trading/internal/model"
)

// AnalyzeRSI evaluates the RSI(14) oversold/overbought rule.
// Confidence scales with how far past the threshold the oscillator sits.
func (e *Engine) AnalyzeRSI(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		return e.rsiRule(q, hist)
	})
}

// rsiRule caller must hold e.mu.
func (e *Engine) rsiRule(q model.Quote, hist []float64) *Signal {
	if len(hist) < rsiPeriod+1 {
		return nil
	}

	rsi := indicator.RSI(hist, rsiPeriod)

	if rsi <= rsiOversold {
		conf := (rsiOversold - rsi) / rsiOversold
		return e.newSignal("RSI Oversold", ActionBuy, conf, q.LastPrice*0.98, q.LastPrice*1.03)
	}
	if rsi >= rsiOverbought {
		conf := (rsi - rsiOverbought) / rsiOversold
		return e.newSignal("RSI Overbought", ActionSell, conf, q.LastPrice*1.02, q.LastPrice*0.97)
	}
	return nil
}

// AnalyzeBollinger evaluates the Bollinger bounce rule: buy within 0.5% of
// the lower band, sell within 0.5% of the upper band.
func (e *Engine) AnalyzeBollinger(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		return e.bollingerRule(q, hist)
	})
}

// bollingerRule caller must hold e.mu.
func (e *Engine) bollingerRule(q model.Quote, hist []float64) *Signal {
	if len(hist) < bbPeriod {
		return nil
	}

	bands := indicator.Bollinger(hist, bbPeriod, bbStdDev)

	if q.LastPrice <= bands.Lower*1.005 {
		return e.newSignal("Bollinger Bounce", ActionBuy, 0.7, bands.Middle, bands.Upper)
	}
	if q.LastPrice >= bands.Upper*0.995 {
		return e.newSignal("Bollinger Bounce", ActionSell, 0.7, bands.Middle, bands.Lower)
	}
	return nil
}
