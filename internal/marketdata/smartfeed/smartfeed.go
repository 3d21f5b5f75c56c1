// Package smartfeed adapts the SmartAPI REST quote endpoint to the
// session's QuoteSource port. One NextQuote call is one FULL-mode quote
// fetch; the session ticker sets the polling cadence.
package smartfeed

import (
	"context"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/pkg/smartconnect"
)

// BANKNIFTY index token on NSE, per the SmartAPI instrument master.
const (
	DefaultExchange = "NSE"
	DefaultToken    = "99926009"
)

// Source polls SmartAPI for quotes. Implements model.QuoteSource.
type Source struct {
	client      *smartconnect.Client
	symbol      string
	exchange    string
	symbolToken string
}

// New wraps a logged-in SmartAPI client as a quote source.
func New(client *smartconnect.Client, symbol, exchange, symbolToken string) *Source {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if symbolToken == "" {
		symbolToken = DefaultToken
	}
	return &Source{
		client:      client,
		symbol:      symbol,
		exchange:    exchange,
		symbolToken: symbolToken,
	}
}

// NextQuote fetches the current FULL-mode quote and converts it to the
// session's quote model.
func (s *Source) NextQuote(ctx context.Context) (model.Quote, error) {
	fq, err := s.client.GetQuote(ctx, s.exchange, s.symbolToken)
	if err != nil {
		return model.Quote{}, err
	}

	q := model.Quote{
		Symbol:        s.symbol,
		LastPrice:     fq.LTP,
		PreviousClose: fq.Close,
		Open:          fq.Open,
		High:          fq.High,
		Low:           fq.Low,
		Volume:        fq.TradeVolume,
		Timestamp:     time.Now(),
		Change:        fq.NetChange,
		ChangePercent: fq.PercentChange,
	}
	if len(fq.Depth.Buy) > 0 {
		q.Bid = fq.Depth.Buy[0].Price
	}
	if len(fq.Depth.Sell) > 0 {
		q.Ask = fq.Depth.Sell[0].Price
	}
	return q, nil
}

// Close logs the session out, best effort.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Logout(ctx)
}
