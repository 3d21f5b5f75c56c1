package autotrade

import (
	"testing"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/ledger"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

func newTestTrader(capital float64) (*Trader, *ledger.Manager) {
	l := ledger.NewManager(ledger.Config{InitialCapital: capital, Symbol: "BANKNIFTY", MarginMultiplier: 5})
	t := New(Config{MinConfidence: 0.6, LotSize: 25, MaxLots: 1}, l)
	return t, l
}

func combinedSignal(action strategy.Action, confidence float64) strategy.Signal {
	return strategy.Signal{
		Strategy:   "Combined (Multi)",
		Action:     action,
		Confidence: confidence,
		Timestamp:  time.Now(),
	}
}

func TestBuysOneLotOnConfidentCombinedSignal(t *testing.T) {
	tr, l := newTestTrader(5_000_000)

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{combinedSignal(strategy.ActionBuy, 0.85)})

	pos := l.GetPositions()
	if len(pos) != 1 {
		t.Fatalf("positions = %d, want 1", len(pos))
	}
	if pos[0].Quantity != 25 {
		t.Errorf("quantity = %d, want one lot of 25", pos[0].Quantity)
	}
	if pos[0].AvgPrice != 52000 {
		t.Errorf("avg price = %v, want 52000", pos[0].AvgPrice)
	}
}

func TestIgnoresLowConfidenceSignals(t *testing.T) {
	tr, l := newTestTrader(5_000_000)

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{combinedSignal(strategy.ActionBuy, 0.55)})

	if n := len(l.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0 below the cutoff", n)
	}
	if n := len(l.GetTrades()); n != 0 {
		t.Errorf("trades = %d, want 0", n)
	}
}

func TestIgnoresSingleRuleSignals(t *testing.T) {
	tr, l := newTestTrader(5_000_000)

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{{
		Strategy:   "RSI Oversold",
		Action:     strategy.ActionBuy,
		Confidence: 0.95,
		Timestamp:  time.Now(),
	}})

	if n := len(l.GetTrades()); n != 0 {
		t.Errorf("trades = %d, want 0 for non-combined strategies", n)
	}
}

func TestSellWhenFlatIsSkipped(t *testing.T) {
	tr, l := newTestTrader(5_000_000)

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{combinedSignal(strategy.ActionSell, 0.9)})

	// No position to unwind: no order placed at all.
	if n := len(l.GetPendingOrders()); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
	if n := len(l.GetTrades()); n != 0 {
		t.Errorf("trades = %d, want 0", n)
	}
}

func TestSellClampsToOpenQuantity(t *testing.T) {
	tr, l := newTestTrader(5_000_000)

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{combinedSignal(strategy.ActionBuy, 0.9)})

	// Manually trim the position to 10 contracts, then auto-sell.
	o := l.PlaceOrder("BANKNIFTY", model.SideSell, 15, 52000, "")
	if !l.ExecuteOrder(o.ID) {
		t.Fatal("setup sell rejected")
	}

	tr.OnTick(model.Quote{Symbol: "BANKNIFTY", LastPrice: 52500},
		[]strategy.Signal{combinedSignal(strategy.ActionSell, 0.9)})

	if n := len(l.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0 after clamped full exit", n)
	}
}

func TestBuyBeyondCashIsRejectedNotPlacedAgain(t *testing.T) {
	tr, l := newTestTrader(100000) // one lot at 52000 costs 1,300,000

	q := model.Quote{Symbol: "BANKNIFTY", LastPrice: 52000}
	tr.OnTick(q, []strategy.Signal{combinedSignal(strategy.ActionBuy, 0.9)})

	if n := len(l.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0", n)
	}
	// The order was placed, then FAILED at execution; it must not stay pending.
	if n := len(l.GetPendingOrders()); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}
