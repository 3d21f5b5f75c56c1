package model

import (
	"encoding/json"
	"time"
)

// Quote is an immutable per-tick snapshot of the BankNifty index.
// Prices are in rupees (float64), matching the SmartAPI quote payload.
type Quote struct {
	Symbol        string    `json:"symbol"`
	LastPrice     float64   `json:"last_price"`
	PreviousClose float64   `json:"previous_close"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume"`
	Bid           float64   `json:"bid"`
	Ask           float64   `json:"ask"`
	Timestamp     time.Time `json:"timestamp"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
}

// JSON returns the JSON-encoded quote (ignoring errors for hot-path usage).
func (q *Quote) JSON() []byte {
	b, _ := json.Marshal(q)
	return b
}
