// Package strategy provides the rule-based signal engine for the dashboard.
//
// The Engine owns a bounded rolling price history and a bounded signal log.
// Observe feeds it one price per tick; the Analyze* methods are pure reads
// of the current history and never append to it, so any number of strategies
// can be evaluated against the same tick without skewing the window.
package strategy

import (
	"sync"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/pricebuf"
)

// Action represents a trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal represents a trading signal emitted by a strategy.
// Immutable once created.
type Signal struct {
	Strategy   string    `json:"strategy"`
	Action     Action    `json:"action"`
	Confidence float64   `json:"confidence"` // [0,1], clamped
	Target     float64   `json:"target,omitempty"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Strategy parameters. Periods and thresholds follow the dashboard defaults.
const (
	historyCap       = 200 // rolling price window
	signalReadWindow = 50  // most recent signals exposed to readers
	signalLogCap     = 1000

	maShortPeriod = 5
	maLongPeriod  = 20

	rsiPeriod     = 14
	rsiOversold   = 30.0
	rsiOverbought = 70.0

	bbPeriod = 20
	bbStdDev = 2.0

	macdFast       = 12
	macdSlow       = 26
	macdSignalLen  = 9
	macdMinHistory = 35

	scalpMinHistory = 10
	scalpMAPeriod   = 5
	scalpThreshold  = 0.002 // 0.2% move from open
	scalpPoints     = 20.0  // fixed target distance
)

// Engine evaluates the trading strategies against a rolling price history.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	history *pricebuf.Buffer
	signals []Signal
}

// NewEngine creates an engine with an empty 200-point history.
func NewEngine() *Engine {
	return &Engine{
		history: pricebuf.New(historyCap),
		signals: make([]Signal, 0, 256),
	}
}

// Observe appends the quote's last price to the rolling history.
// Call exactly once per tick, before evaluating strategies.
func (e *Engine) Observe(q model.Quote) {
	e.mu.Lock()
	e.history.Append(q.LastPrice)
	e.mu.Unlock()
}

// HistoryLen returns the number of prices currently in the window.
func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

// GetSignals returns the most recent signals, newest last, capped at 50.
func (e *Engine) GetSignals() []Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.signals)
	if n > signalReadWindow {
		n = signalReadWindow
	}
	out := make([]Signal, n)
	copy(out, e.signals[len(e.signals)-n:])
	return out
}

// Reset clears history and signals for session reinitialization.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Reset()
	e.signals = e.signals[:0]
}

// newSignal builds a signal with the confidence clamped at 1 and logs it.
// Caller must hold e.mu.
func (e *Engine) newSignal(strategy string, action Action, confidence, stopLoss, target float64) *Signal {
	if confidence > 1 {
		confidence = 1
	}
	sig := Signal{
		Strategy:   strategy,
		Action:     action,
		Confidence: confidence,
		StopLoss:   stopLoss,
		Target:     target,
		Timestamp:  time.Now(),
	}
	e.signals = append(e.signals, sig)
	if len(e.signals) > signalLogCap {
		// Drop oldest; the read window only ever exposes the tail anyway.
		e.signals = e.signals[len(e.signals)-signalLogCap:]
	}
	return &sig
}

// evaluate snapshots the history and runs fn under the engine lock so the
// produced signal lands in the log atomically with its evaluation.
func (e *Engine) evaluate(fn func(hist []float64) *Signal) *Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.history.Snapshot())
}
