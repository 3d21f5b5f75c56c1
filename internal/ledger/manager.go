// Package ledger implements the paper-trading order manager: cash balance,
// open positions, pending orders, and the append-only trade log.
//
// All state lives in memory and is guarded by a single mutex, so the
// execute path and the portfolio-summary path can never observe a
// half-applied fill. Business failures (insufficient cash, oversized sell,
// unknown order) are reported via boolean returns and FAILED status, never
// as errors.
package ledger

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

// Config holds the ledger's policy inputs. Defaults match the demo
// dashboard: ₹1,00,000 starting capital, BANKNIFTY, 5x margin.
type Config struct {
	InitialCapital   float64
	Symbol           string // tracked index symbol
	MarginMultiplier float64
}

func (c *Config) defaults() {
	if c.InitialCapital == 0 {
		c.InitialCapital = 100000
	}
	if c.Symbol == "" {
		c.Symbol = "BANKNIFTY"
	}
	if c.MarginMultiplier == 0 {
		c.MarginMultiplier = 5
	}
}

// Manager is the paper-trading ledger. Safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	cfg  Config
	cash float64

	positions map[string]*model.Position
	orders    []*model.Order // placement order; pending and terminal non-executed
	trades    []model.Order  // append-only, executed fills only

	// Lifetime realized P&L per symbol. Unlike Position.RealizedPL this
	// survives the position being closed to zero and removed.
	realized map[string]float64

	orderSeq int64
	journal  *Journal // optional SQLite audit trail
}

// NewManager creates a ledger with the configured starting capital.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{
		cfg:       cfg,
		cash:      cfg.InitialCapital,
		positions: make(map[string]*model.Position),
		orders:    make([]*model.Order, 0, 64),
		trades:    make([]model.Order, 0, 256),
		realized:  make(map[string]float64),
	}
}

// SetJournal attaches a SQLite journal; executed fills are recorded
// best-effort (a journal error never fails the fill).
func (m *Manager) SetJournal(j *Journal) {
	m.mu.Lock()
	m.journal = j
	m.mu.Unlock()
}

// PlaceOrder creates a new PENDING order. Pure bookkeeping: always succeeds
// and has no balance effect until execution.
func (m *Manager) PlaceOrder(symbol string, side model.Side, quantity int64, price float64, strategy string) model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orderSeq++
	o := &model.Order{
		ID:        fmt.Sprintf("ORD-%d", m.orderSeq),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Timestamp: time.Now(),
		Status:    model.OrderPending,
		Strategy:  strategy,
	}
	m.orders = append(m.orders, o)
	return *o
}

// ExecuteOrder applies a pending order to cash and position state.
// Returns false, marking the order FAILED, when a BUY exceeds available
// cash or a SELL exceeds the open quantity. No partial fills. Unknown or
// non-pending order IDs return false without side effects.
func (m *Manager) ExecuteOrder(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.findOrder(orderID)
	if o == nil || o.Status != model.OrderPending {
		return false
	}

	cost := o.Price * float64(o.Quantity)

	switch o.Side {
	case model.SideBuy:
		if cost > m.cash {
			o.Status = model.OrderFailed
			return false
		}
		m.cash -= cost
		if pos, ok := m.positions[o.Symbol]; ok {
			totalQty := pos.Quantity + o.Quantity
			pos.AvgPrice = (pos.AvgPrice*float64(pos.Quantity) + o.Price*float64(o.Quantity)) / float64(totalQty)
			pos.Quantity = totalQty
		} else {
			m.positions[o.Symbol] = &model.Position{
				Symbol:       o.Symbol,
				Quantity:     o.Quantity,
				AvgPrice:     o.Price,
				CurrentPrice: o.Price,
				Side:         model.PositionLong,
			}
		}

	case model.SideSell:
		pos, ok := m.positions[o.Symbol]
		if !ok || pos.Quantity < o.Quantity {
			o.Status = model.OrderFailed
			return false
		}
		profit := (o.Price - pos.AvgPrice) * float64(o.Quantity)
		pos.RealizedPL += profit
		m.realized[o.Symbol] += profit
		m.cash += cost
		pos.Quantity -= o.Quantity
		o.ProfitLoss = profit
		if pos.Quantity == 0 {
			delete(m.positions, o.Symbol)
		}

	default:
		return false
	}

	o.Status = model.OrderExecuted
	m.trades = append(m.trades, *o)

	if m.journal != nil {
		if err := m.journal.RecordTrade(*o); err != nil {
			log.Printf("[ledger] journal write failed for %s: %v", o.ID, err)
		}
	}
	return true
}

// CancelOrder transitions a PENDING order to CANCELLED. Returns false for
// unknown IDs or orders that already left the pending state.
func (m *Manager) CancelOrder(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.findOrder(orderID)
	if o == nil || o.Status != model.OrderPending {
		return false
	}
	o.Status = model.OrderCancelled
	return true
}

// UpdatePositions refreshes the current price and unrealized P&L of every
// open position in the tracked symbol. Call before reading any derived
// summary to avoid stale unrealized figures.
func (m *Manager) UpdatePositions(currentPrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePositionsLocked(currentPrice)
}

func (m *Manager) updatePositionsLocked(currentPrice float64) {
	if pos, ok := m.positions[m.cfg.Symbol]; ok {
		pos.CurrentPrice = currentPrice
		pos.UnrealizedPL = pos.ComputeUnrealized(currentPrice)
	}
}

// GetPositions returns a snapshot of all open positions.
func (m *Manager) GetPositions() []model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	return out
}

// GetTrades returns the full executed-trade history, oldest first.
func (m *Manager) GetTrades() []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Order, len(m.trades))
	copy(out, m.trades)
	return out
}

// GetPendingOrders returns all orders still awaiting execution.
func (m *Manager) GetPendingOrders() []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Order, 0, 8)
	for _, o := range m.orders {
		if o.Status == model.OrderPending {
			out = append(out, *o)
		}
	}
	return out
}

// GetPortfolioSummary refreshes positions at the given price and returns
// the derived portfolio snapshot.
func (m *Manager) GetPortfolioSummary(currentPrice float64) model.PortfolioSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updatePositionsLocked(currentPrice)

	var unrealized, realized, positionsValue float64
	for _, p := range m.positions {
		unrealized += p.UnrealizedPL
		realized += p.RealizedPL
		positionsValue += float64(p.Quantity) * p.CurrentPrice
	}

	return model.PortfolioSummary{
		TotalValue:      m.cash + positionsValue,
		CashBalance:     m.cash,
		UnrealizedPL:    unrealized,
		RealizedPL:      realized,
		DayPL:           unrealized + realized,
		MarginAvailable: m.cash * m.cfg.MarginMultiplier,
	}
}

// RealizedBySymbol returns lifetime realized P&L per symbol, including
// symbols whose positions have since been closed and removed.
func (m *Manager) RealizedBySymbol() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.realized))
	for k, v := range m.realized {
		out[k] = v
	}
	return out
}

// CashBalance returns the current cash balance.
func (m *Manager) CashBalance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash
}

// Reset clears all trades, positions, and orders, and restores cash to the
// configured starting capital. Used for test/demo reinitialization.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cash = m.cfg.InitialCapital
	m.positions = make(map[string]*model.Position)
	m.orders = m.orders[:0]
	m.trades = m.trades[:0]
	m.realized = make(map[string]float64)
}

// findOrder caller must hold m.mu.
func (m *Manager) findOrder(orderID string) *model.Order {
	for _, o := range m.orders {
		if o.ID == orderID {
			return o
		}
	}
	return nil
}
