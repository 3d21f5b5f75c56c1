package model

// PositionSide represents the direction of an open position.
// Paper trading only ever opens LONG positions; short selling is not modeled.
type PositionSide string

const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// Position is an open paper-trading position for one symbol.
// A position exists iff its quantity is nonzero; it is removed the
// instant quantity reaches exactly zero.
type Position struct {
	Symbol       string       `json:"symbol"`
	Quantity     int64        `json:"quantity"`  // lots, > 0 while open
	AvgPrice     float64      `json:"avg_price"` // volume-weighted entry price
	CurrentPrice float64      `json:"current_price"`
	Side         PositionSide `json:"side"`
	UnrealizedPL float64      `json:"unrealized_pl"`
	RealizedPL   float64      `json:"realized_pl"` // cumulative, this position's lifetime
}

// ComputeUnrealized returns the unrealized P&L at the given price without
// mutating the position.
func (p *Position) ComputeUnrealized(price float64) float64 {
	return (price - p.AvgPrice) * float64(p.Quantity)
}
