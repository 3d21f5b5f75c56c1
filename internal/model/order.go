package model

import "time"

// Side represents the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus represents the lifecycle state of an order.
// An order is created PENDING and transitions exactly once to
// EXECUTED, CANCELLED, or FAILED.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderExecuted  OrderStatus = "EXECUTED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderFailed    OrderStatus = "FAILED"
)

// Order represents a paper-trading order. Once executed it doubles as the
// immutable trade record appended to the trade log.
type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Quantity  int64       `json:"quantity"` // lots
	Price     float64     `json:"price"`
	Timestamp time.Time   `json:"timestamp"`
	Status    OrderStatus `json:"status"`
	Strategy  string      `json:"strategy,omitempty"`
	// ProfitLoss is the realized P&L for executed SELL orders, zero otherwise.
	ProfitLoss float64 `json:"profit_loss,omitempty"`
}
