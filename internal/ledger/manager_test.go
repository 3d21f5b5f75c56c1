package ledger

import (
	"math"
	"testing"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

func newTestManager() *Manager {
	return NewManager(Config{InitialCapital: 100000, Symbol: "BANKNIFTY", MarginMultiplier: 5})
}

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

// mustExecute places and executes an order, failing the test on rejection.
func mustExecute(t *testing.T, m *Manager, side model.Side, qty int64, price float64) model.Order {
	t.Helper()
	o := m.PlaceOrder("BANKNIFTY", side, qty, price, "")
	if !m.ExecuteOrder(o.ID) {
		t.Fatalf("ExecuteOrder(%s %d @ %v) rejected", side, qty, price)
	}
	return o
}

// ────────────────────────────────────────────────────────────
// Placement / execution basics
// ────────────────────────────────────────────────────────────

func TestPlaceOrderIsPendingWithNoBalanceEffect(t *testing.T) {
	m := newTestManager()
	o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 10, 100, "MA Crossover")

	if o.Status != model.OrderPending {
		t.Errorf("status = %s, want PENDING", o.Status)
	}
	if o.ID == "" {
		t.Error("order must get a fresh unique id")
	}
	assertClose(t, "cash untouched by placement", m.CashBalance(), 100000)
	if n := len(m.GetPendingOrders()); n != 1 {
		t.Errorf("pending orders = %d, want 1", n)
	}
	if n := len(m.GetTrades()); n != 0 {
		t.Errorf("trade log = %d entries, want 0 before execution", n)
	}
}

func TestOrderIDsAreUnique(t *testing.T) {
	m := newTestManager()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 1, 100, "")
		if seen[o.ID] {
			t.Fatalf("duplicate order id %s", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestExecuteBuyDebitsCashExactly(t *testing.T) {
	m := newTestManager()
	before := m.CashBalance()
	mustExecute(t, m, model.SideBuy, 10, 100)
	assertClose(t, "cash after buy", m.CashBalance(), before-10*100)
}

func TestExecuteUnknownOrderIDHasNoSideEffects(t *testing.T) {
	m := newTestManager()
	if m.ExecuteOrder("ORD-404") {
		t.Error("unknown order id must return false")
	}
	assertClose(t, "cash", m.CashBalance(), 100000)
	if n := len(m.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0", n)
	}
}

func TestExecuteIsSingleShot(t *testing.T) {
	m := newTestManager()
	o := mustExecute(t, m, model.SideBuy, 1, 100)
	if m.ExecuteOrder(o.ID) {
		t.Error("second execution of the same order must return false")
	}
	assertClose(t, "cash debited once", m.CashBalance(), 100000-100)
}

// ────────────────────────────────────────────────────────────
// Validation failures
// ────────────────────────────────────────────────────────────

func TestBuyExceedingCashFails(t *testing.T) {
	m := newTestManager()
	o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 10, 50000, "") // 5,00,000 > 1,00,000
	if m.ExecuteOrder(o.ID) {
		t.Fatal("buy exceeding cash must fail")
	}
	assertClose(t, "cash unchanged", m.CashBalance(), 100000)
	if n := len(m.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0", n)
	}
	// The failed order left the pending set and is not a trade.
	if n := len(m.GetPendingOrders()); n != 0 {
		t.Errorf("pending = %d, want 0 (order is FAILED)", n)
	}
	if n := len(m.GetTrades()); n != 0 {
		t.Errorf("trades = %d, want 0", n)
	}
}

func TestSellWithoutPositionFails(t *testing.T) {
	m := newTestManager()
	o := m.PlaceOrder("BANKNIFTY", model.SideSell, 5, 100, "")
	if m.ExecuteOrder(o.ID) {
		t.Fatal("sell with no open position must fail")
	}
	assertClose(t, "cash unchanged", m.CashBalance(), 100000)
}

func TestOversellLeavesStateUnchanged(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)
	cashBefore := m.CashBalance()

	o := m.PlaceOrder("BANKNIFTY", model.SideSell, 11, 110, "")
	if m.ExecuteOrder(o.ID) {
		t.Fatal("sell exceeding open quantity must fail (no partial fills)")
	}
	assertClose(t, "cash unchanged", m.CashBalance(), cashBefore)
	pos := m.GetPositions()
	if len(pos) != 1 || pos[0].Quantity != 10 {
		t.Errorf("position = %+v, want quantity 10 untouched", pos)
	}
}

// ────────────────────────────────────────────────────────────
// Position accounting
// ────────────────────────────────────────────────────────────

func TestBuyOpensLongPosition(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)

	pos := m.GetPositions()
	if len(pos) != 1 {
		t.Fatalf("positions = %d, want 1", len(pos))
	}
	p := pos[0]
	if p.Symbol != "BANKNIFTY" || p.Side != model.PositionLong {
		t.Errorf("position = %+v, want LONG BANKNIFTY", p)
	}
	if p.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", p.Quantity)
	}
	assertClose(t, "avg price", p.AvgPrice, 100)
}

func TestAveragePriceIsVolumeWeighted(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)
	mustExecute(t, m, model.SideBuy, 30, 120)

	pos := m.GetPositions()
	if len(pos) != 1 {
		t.Fatalf("positions = %d, want 1", len(pos))
	}
	// (10*100 + 30*120) / 40 = 115
	assertClose(t, "weighted avg", pos[0].AvgPrice, 115)
	if pos[0].Quantity != 40 {
		t.Errorf("quantity = %d, want 40", pos[0].Quantity)
	}
}

func TestSellReducesQuantityWithoutChangingAvgPrice(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)
	mustExecute(t, m, model.SideSell, 4, 110)

	pos := m.GetPositions()
	if len(pos) != 1 {
		t.Fatalf("positions = %d, want 1", len(pos))
	}
	if pos[0].Quantity != 6 {
		t.Errorf("quantity = %d, want 6", pos[0].Quantity)
	}
	assertClose(t, "avg price unchanged by sell", pos[0].AvgPrice, 100)
	assertClose(t, "realized", pos[0].RealizedPL, (110-100)*4)
}

func TestRoundTrip(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)
	mustExecute(t, m, model.SideSell, 10, 110)

	// Realized P&L = (110-100)*10 = 100, recorded on the sell trade.
	trades := m.GetTrades()
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(trades))
	}
	assertClose(t, "sell trade realized P&L", trades[1].ProfitLoss, 100)

	// Position closed to zero is removed entirely.
	if n := len(m.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0 after flat close", n)
	}
	// Cash = initial − 1000 + 1100.
	assertClose(t, "cash", m.CashBalance(), 100000-1000+1100)
}

func TestLifetimeRealizedSurvivesPositionClose(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)
	mustExecute(t, m, model.SideSell, 10, 110)

	if n := len(m.GetPositions()); n != 0 {
		t.Fatalf("position should be removed, got %d", n)
	}
	got := m.RealizedBySymbol()
	assertClose(t, "lifetime realized", got["BANKNIFTY"], 100)

	// A second round trip accumulates.
	mustExecute(t, m, model.SideBuy, 5, 200)
	mustExecute(t, m, model.SideSell, 5, 190)
	got = m.RealizedBySymbol()
	assertClose(t, "lifetime realized accumulates", got["BANKNIFTY"], 100-50)
}

// ────────────────────────────────────────────────────────────
// Cancellation
// ────────────────────────────────────────────────────────────

func TestCancelPendingOrder(t *testing.T) {
	m := newTestManager()
	o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 1, 100, "")
	if !m.CancelOrder(o.ID) {
		t.Fatal("cancelling a pending order must succeed")
	}
	if n := len(m.GetPendingOrders()); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
	if m.ExecuteOrder(o.ID) {
		t.Error("executing a cancelled order must fail")
	}
	assertClose(t, "cash", m.CashBalance(), 100000)
}

func TestCancelNonPendingFails(t *testing.T) {
	m := newTestManager()
	o := mustExecute(t, m, model.SideBuy, 1, 100)
	if m.CancelOrder(o.ID) {
		t.Error("cancelling an executed order must fail")
	}
	if m.CancelOrder("ORD-404") {
		t.Error("cancelling an unknown order must fail")
	}
}

// ────────────────────────────────────────────────────────────
// Portfolio summary
// ────────────────────────────────────────────────────────────

func TestPortfolioSummaryMath(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100) // cash 99000
	mustExecute(t, m, model.SideSell, 4, 110) // realized +40, cash 99440, qty 6

	s := m.GetPortfolioSummary(105)

	assertClose(t, "cash", s.CashBalance, 100000-1000+440)
	assertClose(t, "unrealized", s.UnrealizedPL, (105-100)*6)
	assertClose(t, "realized", s.RealizedPL, 40)
	assertClose(t, "day P&L", s.DayPL, 30+40)
	assertClose(t, "total value", s.TotalValue, s.CashBalance+6*105)
	assertClose(t, "margin 5x", s.MarginAvailable, s.CashBalance*5)
}

func TestUpdatePositionsRefreshesUnrealized(t *testing.T) {
	m := newTestManager()
	mustExecute(t, m, model.SideBuy, 10, 100)

	m.UpdatePositions(120)
	pos := m.GetPositions()
	assertClose(t, "unrealized at 120", pos[0].UnrealizedPL, 200)
	assertClose(t, "current price", pos[0].CurrentPrice, 120)

	m.UpdatePositions(90)
	pos = m.GetPositions()
	assertClose(t, "unrealized at 90", pos[0].UnrealizedPL, -100)
}

// ────────────────────────────────────────────────────────────
// Reset
// ────────────────────────────────────────────────────────────

func TestResetRestoresConfiguredCapital(t *testing.T) {
	m := NewManager(Config{InitialCapital: 250000, Symbol: "BANKNIFTY", MarginMultiplier: 5})
	o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 10, 100, "")
	m.ExecuteOrder(o.ID)
	m.PlaceOrder("BANKNIFTY", model.SideBuy, 1, 100, "")

	m.Reset()

	assertClose(t, "cash restored to configured capital", m.CashBalance(), 250000)
	if n := len(m.GetPositions()); n != 0 {
		t.Errorf("positions = %d, want 0", n)
	}
	if n := len(m.GetTrades()); n != 0 {
		t.Errorf("trades = %d, want 0", n)
	}
	if n := len(m.GetPendingOrders()); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
	if len(m.RealizedBySymbol()) != 0 {
		t.Error("lifetime realized ledger must clear on reset")
	}
}
