package strategy

import (
	"github.com/akashpant12/banknifty-trading/internal/model"
)

// AnalyzeCombined runs the MA, RSI, Bollinger, and MACD rules against the
// same history snapshot and emits a signal only when at least two of them
// agree on direction. Confidence is the mean of the agreeing confidences.
//
// Sub-strategy signals produced during the evaluation are logged as usual;
// history is not touched (Observe owns the append), so running four rules
// on one tick cannot skew the window.
func (e *Engine) AnalyzeCombined(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		_, combined := e.combinedRule(q, hist)
		return combined
	})
}

// combinedRule returns the emitted sub-signals and the combined verdict.
// Caller must hold e.mu.
func (e *Engine) combinedRule(q model.Quote, hist []float64) ([]Signal, *Signal) {
	subs := make([]*Signal, 0, 4)
	subs = append(subs, e.maCrossover(hist))
	subs = append(subs, e.rsiRule(q, hist))
	subs = append(subs, e.bollingerRule(q, hist))
	subs = append(subs, e.macdCrossover(hist))

	var emitted []Signal
	var buys, sells []*Signal
	for _, s := range subs {
		if s == nil {
			continue
		}
		emitted = append(emitted, *s)
		switch s.Action {
		case ActionBuy:
			buys = append(buys, s)
		case ActionSell:
			sells = append(sells, s)
		}
	}

	if len(buys) >= 2 {
		return emitted, e.newSignal("Combined (Multi)", ActionBuy, meanConfidence(buys),
			q.LastPrice*0.98, q.LastPrice*1.04)
	}
	if len(sells) >= 2 {
		return emitted, e.newSignal("Combined (Multi)", ActionSell, meanConfidence(sells),
			q.LastPrice*1.02, q.LastPrice*0.96)
	}
	return emitted, nil
}

func meanConfidence(signals []*Signal) float64 {
	var sum float64
	for _, s := range signals {
		sum += s.Confidence
	}
	return sum / float64(len(signals))
}
