// Package autotrade converts high-confidence combined signals into paper
// orders. It only ever acts on the combined strategy: single-rule signals
// are informational and stay on the dashboard.
package autotrade

import (
	"context"
	"log"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/ledger"
	"github.com/akashpant12/banknifty-trading/internal/markethours"
	"github.com/akashpant12/banknifty-trading/internal/metrics"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/notification"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

// Config holds the auto-trading policy.
type Config struct {
	Symbol        string
	MinConfidence float64       // combined signals below this are ignored
	Delay         time.Duration // pause between placing and executing
	LotSize       int64         // contracts per lot
	MaxLots       int64         // lots per auto order

	// EnforceMarketHours skips trades outside NSE hours. Off by default
	// so the simulator works around the clock.
	EnforceMarketHours bool
}

func (c *Config) defaults() {
	if c.Symbol == "" {
		c.Symbol = "BANKNIFTY"
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 0.6
	}
	if c.LotSize == 0 {
		c.LotSize = 25
	}
	if c.MaxLots == 0 {
		c.MaxLots = 1
	}
}

// Trader places and executes paper orders for qualifying signals.
type Trader struct {
	cfg      Config
	ledger   *ledger.Manager
	metrics  *metrics.Metrics      // optional
	notifier notification.Notifier // optional

	now func() time.Time
}

// New creates a Trader.
func New(cfg Config, l *ledger.Manager) *Trader {
	cfg.defaults()
	return &Trader{cfg: cfg, ledger: l, now: time.Now}
}

// SetMetrics attaches order metrics.
func (t *Trader) SetMetrics(m *metrics.Metrics) { t.metrics = m }

// SetNotifier attaches a trade notifier.
func (t *Trader) SetNotifier(n notification.Notifier) { t.notifier = n }

// OnTick is the session listener. It scans the tick's signals for a
// combined BUY or SELL above the confidence cutoff and trades it.
func (t *Trader) OnTick(q model.Quote, signals []strategy.Signal) {
	for _, sig := range signals {
		if sig.Strategy != "Combined (Multi)" {
			continue
		}
		if sig.Action != strategy.ActionBuy && sig.Action != strategy.ActionSell {
			continue
		}
		if sig.Confidence < t.cfg.MinConfidence {
			log.Printf("[autotrade] skipping %s at confidence %.2f (cutoff %.2f)",
				sig.Action, sig.Confidence, t.cfg.MinConfidence)
			continue
		}
		if t.cfg.EnforceMarketHours && !markethours.IsMarketOpen(t.now()) {
			log.Printf("[autotrade] market closed, skipping %s signal", sig.Action)
			continue
		}
		t.trade(sig, q.LastPrice)
	}
}

func (t *Trader) trade(sig strategy.Signal, price float64) {
	qty := t.cfg.LotSize * t.cfg.MaxLots
	side := model.SideBuy
	if sig.Action == strategy.ActionSell {
		side = model.SideSell

		// Clamp to the open quantity; skip entirely when flat instead of
		// burning an order on a guaranteed rejection.
		open := t.openQuantity()
		if open == 0 {
			log.Printf("[autotrade] no open position, skipping SELL signal")
			return
		}
		if qty > open {
			qty = open
		}
	}

	o := t.ledger.PlaceOrder(t.cfg.Symbol, side, qty, price, sig.Strategy)
	log.Printf("[autotrade] placed %s: %s %d @ %.2f (confidence %.2f)",
		o.ID, side, qty, price, sig.Confidence)

	if t.cfg.Delay > 0 {
		time.Sleep(t.cfg.Delay)
	}

	if !t.ledger.ExecuteOrder(o.ID) {
		log.Printf("[autotrade] execution rejected for %s", o.ID)
		if t.metrics != nil {
			t.metrics.OrdersFailed.Inc()
		}
		return
	}
	if t.metrics != nil {
		t.metrics.OrdersExecuted.WithLabelValues(string(side)).Inc()
	}
	if t.notifier != nil {
		for _, fill := range t.ledger.GetTrades() {
			if fill.ID == o.ID {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := t.notifier.Send(ctx, notification.TradeAlert(fill)); err != nil {
					log.Printf("[autotrade] trade notification failed: %v", err)
				}
				cancel()
				break
			}
		}
	}
}

func (t *Trader) openQuantity() int64 {
	for _, p := range t.ledger.GetPositions() {
		if p.Symbol == t.cfg.Symbol {
			return p.Quantity
		}
	}
	return 0
}
