package model

import "context"

// ── Feed Port Interfaces ──
// These interfaces decouple the trading session from concrete market data
// sources (simulator, WebSocket feed, SmartAPI). Each source satisfies
// QuoteSource.

// QuoteSource supplies one quote per tick.
type QuoteSource interface {
	// NextQuote returns the latest quote, or an error when no quote is
	// available (the caller skips that tick).
	NextQuote(ctx context.Context) (Quote, error)

	// Close releases underlying resources.
	Close() error
}
