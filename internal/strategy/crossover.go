package strategy

import (
	"github.com/akashpant12/banknifty-trading/internal/indicator"
	"github.com/akashpant12/banknifty-trading/internal/model"
)

// AnalyzeMACrossover evaluates the 5/20 moving-average crossover rule.
// Returns nil when history is shorter than the long period or no cross
// occurred on this tick.
func (e *Engine) AnalyzeMACrossover(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		return e.maCrossover(hist)
	})
}

// maCrossover compares the MA relation on the full history against the
// history excluding the latest point: a flipped relation means the cross
// happened on this tick. Caller must hold e.mu.
func (e *Engine) maCrossover(hist []float64) *Signal {
	if len(hist) < maLongPeriod {
		return nil
	}

	shortMA := indicator.SMA(hist, maShortPeriod)
	longMA := indicator.SMA(hist, maLongPeriod)
	prev := hist[:len(hist)-1]
	prevShort := indicator.SMA(prev, maShortPeriod)
	prevLong := indicator.SMA(prev, maLongPeriod)

	goldenCross := prevShort <= prevLong && shortMA > longMA
	deathCross := prevShort >= prevLong && shortMA < longMA

	if goldenCross {
		return e.newSignal("MA Crossover", ActionBuy, 0.75, shortMA*0.98, shortMA*1.02)
	}
	if deathCross {
		return e.newSignal("MA Crossover", ActionSell, 0.75, shortMA*1.02, shortMA*0.98)
	}
	return nil
}

// AnalyzeMACD evaluates the 12/26/9 MACD/signal-line crossover rule.
func (e *Engine) AnalyzeMACD(q model.Quote) *Signal {
	return e.evaluate(func(hist []float64) *Signal {
		return e.macdCrossover(hist)
	})
}

// macdCrossover detects the MACD line crossing its signal line on this tick.
// Caller must hold e.mu.
func (e *Engine) macdCrossover(hist []float64) *Signal {
	if len(hist) < macdMinHistory {
		return nil
	}

	cur := indicator.MACD(hist, macdFast, macdSlow, macdSignalLen)
	prev := indicator.MACD(hist[:len(hist)-1], macdFast, macdSlow, macdSignalLen)

	bullish := prev.MACD <= prev.Signal && cur.MACD > cur.Signal
	bearish := prev.MACD >= prev.Signal && cur.MACD < cur.Signal

	if bullish {
		return e.newSignal("MACD Bullish", ActionBuy, 0.65, cur.Signal, cur.Signal*1.02)
	}
	if bearish {
		return e.newSignal("MACD Bearish", ActionSell, 0.65, cur.Signal, cur.Signal*0.98)
	}
	return nil
}
