package model

// PortfolioSummary is a derived snapshot of the paper-trading ledger.
// It is computed on demand and never stored.
type PortfolioSummary struct {
	TotalValue      float64 `json:"total_value"` // cash + positions at current price
	CashBalance     float64 `json:"cash_balance"`
	UnrealizedPL    float64 `json:"unrealized_pl"`
	RealizedPL      float64 `json:"realized_pl"`
	DayPL           float64 `json:"day_pl"` // unrealized + realized
	MarginAvailable float64 `json:"margin_available"`
}
