// Package wsfeed provides a WebSocket ingest client that connects to a
// quote server (e.g. cmd/quoteserver) and feeds quotes into the trading
// session. The wire format is plain JSON, identical to model.Quote.
//
// This is a drop-in alternative to the in-process simulator: useful when
// several dashboards should share one simulated feed, or when a custom
// bridge publishes real quotes.
package wsfeed

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

// Config holds configuration for the WebSocket quote ingest.
type Config struct {
	// URL of the quote WebSocket server, e.g. "ws://localhost:9001/ws"
	URL string

	// ReconnectDelay is the initial delay before reconnection attempts.
	// Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Ingest connects to a plain-JSON WebSocket quote server and pushes
// model.Quote values into quoteCh.
type Ingest struct {
	cfg Config

	// Optional hook, called each time a reconnection happens.
	OnReconnect func()
}

// New creates a new Ingest. Returns an error if the URL is unparseable.
func New(cfg Config) (*Ingest, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}
	return &Ingest{cfg: cfg}, nil
}

// Start connects to the quote server and streams quotes into quoteCh.
// Blocks until ctx is cancelled. Reconnects automatically on disconnect
// with exponential backoff.
func (ing *Ingest) Start(ctx context.Context, quoteCh chan<- model.Quote) error {
	delay := ing.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := ing.runOnce(ctx, quoteCh)
		if err == nil {
			// Context cancelled cleanly
			return nil
		}

		log.Printf("[wsfeed] disconnected (%v), reconnecting in %s...", err, delay)
		if ing.OnReconnect != nil {
			ing.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > ing.cfg.MaxReconnectDelay {
			delay = ing.cfg.MaxReconnectDelay
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect or
// ctx cancel.
func (ing *Ingest) runOnce(ctx context.Context, quoteCh chan<- model.Quote) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ing.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("[wsfeed] connected to %s", ing.cfg.URL)

	// Async context watcher that closes the connection on cancel.
	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		var q model.Quote
		if err := json.Unmarshal(raw, &q); err != nil {
			log.Printf("[wsfeed] parse error: %v (raw: %s)", err, raw)
			continue
		}

		if q.Symbol == "" || q.LastPrice <= 0 {
			log.Printf("[wsfeed] skipping malformed quote")
			continue
		}

		select {
		case quoteCh <- q:
		default:
			log.Println("[wsfeed] quoteCh full, dropping quote")
		}
	}
}
