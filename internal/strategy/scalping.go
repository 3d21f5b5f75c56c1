package strategy

import (
	"math"

	"github.com/akashpant12/banknifty-trading/internal/indicator"
	"github.com/akashpant12/banknifty-trading/internal/model"
)

// AnalyzeScalping evaluates the intraday scalping rule: act on a >0.2% move
// from the day's open when the price sits on the same side of the 5-period MA.
func (e *Engine) AnalyzeScalping(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		return e.scalpingRule(q, hist)
	})
}

// scalpingRule caller must hold e.mu.
func (e *Engine) scalpingRule(q model.Quote, hist []float64) *Signal {
	if len(hist) < scalpMinHistory {
		return nil
	}
	if q.Open == 0 {
		return nil
	}

	shortMA := indicator.SMA(hist, scalpMAPeriod)
	priceChange := (q.LastPrice - q.Open) / q.Open

	if math.Abs(priceChange) <= scalpThreshold {
		return nil
	}
	if priceChange > 0 && q.LastPrice > shortMA {
		return e.newSignal("Scalping", ActionBuy, 0.55, q.LastPrice, q.LastPrice+scalpPoints)
	}
	if priceChange < 0 && q.LastPrice < shortMA {
		return e.newSignal("Scalping", ActionSell, 0.55, q.LastPrice, q.LastPrice-scalpPoints)
	}
	return nil
}
