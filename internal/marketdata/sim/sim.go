// Package sim generates simulated BANKNIFTY market data: a random-walk
// quote stream and a synthetic option chain. It lets the dashboard run
// end-to-end without broker credentials or a live feed.
package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

// Config holds the simulator's tunables.
type Config struct {
	Symbol     string  // default "BANKNIFTY"
	BasePrice  float64 // session anchor price, default 52000
	Volatility float64 // per-tick walk as a fraction of base, default 0.0015
	Seed       int64   // 0 means time-seeded
}

func (c *Config) defaults() {
	if c.Symbol == "" {
		c.Symbol = "BANKNIFTY"
	}
	if c.BasePrice == 0 {
		c.BasePrice = 52000
	}
	if c.Volatility == 0 {
		c.Volatility = 0.0015
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// Simulator produces a mean-reverting random walk around the base price.
// Safe for concurrent use. Implements model.QuoteSource.
type Simulator struct {
	mu  sync.Mutex
	cfg Config
	rng *rand.Rand

	last      float64
	open      float64
	prevClose float64
	high      float64
	low       float64
	volume    int64
}

// New creates a Simulator. The session open is drawn once near the base
// price; the previous close is the base itself.
func New(cfg Config) *Simulator {
	cfg.defaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	open := round2(cfg.BasePrice * (1 + (rng.Float64()-0.5)*0.01))
	return &Simulator{
		cfg:       cfg,
		rng:       rng,
		last:      open,
		open:      open,
		prevClose: cfg.BasePrice,
		high:      open,
		low:       open,
	}
}

// NextQuote advances the walk one step and returns the resulting quote.
// Never blocks and never fails; the ctx parameter satisfies the
// model.QuoteSource contract.
func (s *Simulator) NextQuote(_ context.Context) (model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Random step with a mild pull back toward the base so the walk
	// cannot drift without bound.
	step := (s.rng.Float64()*2 - 1) * s.cfg.Volatility * s.cfg.BasePrice
	revert := (s.cfg.BasePrice - s.last) * 0.01
	s.last = round2(s.last + step + revert)
	if s.last < 1 {
		s.last = 1
	}
	if s.last > s.high {
		s.high = s.last
	}
	if s.last < s.low {
		s.low = s.last
	}
	s.volume += int64(s.rng.Intn(50000) + 10000)

	change := s.last - s.prevClose
	q := model.Quote{
		Symbol:        s.cfg.Symbol,
		LastPrice:     s.last,
		PreviousClose: s.prevClose,
		Open:          s.open,
		High:          s.high,
		Low:           s.low,
		Volume:        s.volume,
		Bid:           round2(s.last - 0.5),
		Ask:           round2(s.last + 0.5),
		Timestamp:     time.Now(),
		Change:        round2(change),
		ChangePercent: round2(change / s.prevClose * 100),
	}
	return q, nil
}

// Close satisfies model.QuoteSource; the simulator holds no resources.
func (s *Simulator) Close() error { return nil }

// OptionChain builds a synthetic chain of 21 strikes (ATM ±10, step 100)
// around the given spot price. Premiums decay with distance from spot and
// carry a little noise so the chain moves between refreshes.
func (s *Simulator) OptionChain(spot float64) []model.OptionChainRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	atm := math.Round(spot/100) * 100
	rows := make([]model.OptionChainRow, 0, 21)
	for i := -10; i <= 10; i++ {
		strike := atm + float64(i)*100
		call := round2(math.Max(0.5, ((spot-strike)+100)*(1+(s.rng.Float64()-0.5)*0.1)))
		put := round2(math.Max(0.5, ((strike-spot)+100)*(1+(s.rng.Float64()-0.5)*0.1)))
		rows = append(rows, model.OptionChainRow{
			StrikePrice: strike,
			Call: model.OptionQuote{
				LastPrice:    call,
				Bid:          round2(math.Max(0.05, call-0.25)),
				Ask:          round2(call + 0.25),
				Volume:       int64(s.rng.Intn(1000000) + 100000),
				OpenInterest: int64(s.rng.Intn(5000000) + 500000),
			},
			Put: model.OptionQuote{
				LastPrice:    put,
				Bid:          round2(math.Max(0.05, put-0.25)),
				Ask:          round2(put + 0.25),
				Volume:       int64(s.rng.Intn(1000000) + 100000),
				OpenInterest: int64(s.rng.Intn(5000000) + 500000),
			},
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
