package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

func TestJournalRecordAndReadBack(t *testing.T) {
	j, err := NewJournal(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	defer j.Close()

	o := model.Order{
		ID:         "ORD-1",
		Symbol:     "BANKNIFTY",
		Side:       model.SideSell,
		Quantity:   10,
		Price:      52110.5,
		Timestamp:  time.Now(),
		Status:     model.OrderExecuted,
		Strategy:   "Combined (Multi)",
		ProfitLoss: 1105,
	}
	if err := j.RecordTrade(o); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}

	trades, err := j.GetTrades(10)
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("journaled trades = %d, want 1", len(trades))
	}
	got := trades[0]
	if got.OrderID != "ORD-1" || got.Symbol != "BANKNIFTY" || got.Side != "SELL" {
		t.Errorf("row = %+v", got)
	}
	if got.Qty != 10 || got.Price != 52110.5 || got.ProfitLoss != 1105 {
		t.Errorf("row values = %+v", got)
	}
}

func TestJournalErrorsNeverFailTheFill(t *testing.T) {
	m := newTestManager()
	j, err := NewJournal(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	m.SetJournal(j)
	j.Close() // writes will now error

	o := m.PlaceOrder("BANKNIFTY", model.SideBuy, 1, 100, "")
	if !m.ExecuteOrder(o.ID) {
		t.Fatal("fill must succeed even when the journal write fails")
	}
}
