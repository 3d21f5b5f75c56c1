package model

// OptionQuote holds one side (call or put) of an option chain row.
type OptionQuote struct {
	LastPrice    float64 `json:"last_price"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`
}

// OptionChainRow is a single strike of the option chain.
type OptionChainRow struct {
	StrikePrice float64     `json:"strike_price"`
	Call        OptionQuote `json:"call"`
	Put         OptionQuote `json:"put"`
}
