package strategy

import (
	"github.com/akashpant12/banknifty-trading/internal/model"
)

// EvaluateAll runs the full per-tick evaluation (scalping plus the
// combined vote over MA, RSI, Bollinger, and MACD) in one pass under one
// lock, and returns every signal emitted for this tick in log order.
//
// This is what the trading session calls each tick; the individual
// Analyze* methods remain for targeted evaluation and the REST API.
func (e *Engine) EvaluateAll(q model.Quote) []Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	hist := e.history.Snapshot()

	var emitted []Signal
	if s := e.scalpingRule(q, hist); s != nil {
		emitted = append(emitted, *s)
	}
	subs, combined := e.combinedRule(q, hist)
	emitted = append(emitted, subs...)
	if combined != nil {
		emitted = append(emitted, *combined)
	}
	return emitted
}
