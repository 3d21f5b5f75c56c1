// Package redis publishes quotes, signals, and executed trades to Redis
// so external consumers (charting tools, recorders, other dashboards)
// can follow the session without touching the HTTP API.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

const (
	// Stream trimming: roughly a session of 2s quotes plus buffer.
	quoteStreamMaxLen  = 12000
	signalStreamMaxLen = 2000
	tradeStreamMaxLen  = 2000

	defaultLatestTTL = 30 * time.Minute
)

// PublisherConfig configures the Redis publisher.
type PublisherConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes quotes, signals, and trades to Redis Streams and
// PubSub channels, keyed by symbol.
type Publisher struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// New creates a new Publisher and pings the server.
func New(cfg PublisherConfig) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// PublishQuote performs pipelined writes for one quote:
// SET latest + XADD to the quote stream + PUBLISH for live subscribers.
func (p *Publisher) PublishQuote(ctx context.Context, q model.Quote) {
	jsonData := string(q.JSON())

	pipe := p.client.Pipeline()
	pipe.Set(ctx, "quote:latest:"+q.Symbol, jsonData, defaultLatestTTL)
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: "quote:" + q.Symbol,
		MaxLen: quoteStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": jsonData},
	})
	pipe.Publish(ctx, "pub:quote:"+q.Symbol, jsonData)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] quote pipeline error for %s: %v", q.Symbol, err)
	}
}

// PublishSignal appends a signal to the signal stream and publishes it.
func (p *Publisher) PublishSignal(ctx context.Context, symbol string, sig strategy.Signal) {
	raw, err := json.Marshal(sig)
	if err != nil {
		return
	}
	jsonData := string(raw)

	pipe := p.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: "signal:" + symbol,
		MaxLen: signalStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": jsonData},
	})
	pipe.Publish(ctx, "pub:signal:"+symbol, jsonData)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] signal pipeline error for %s/%s: %v", symbol, sig.Strategy, err)
	}
}

// PublishTrade appends an executed fill to the trade stream.
func (p *Publisher) PublishTrade(ctx context.Context, o model.Order) {
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	jsonData := string(raw)

	pipe := p.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: "trade:" + o.Symbol,
		MaxLen: tradeStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": jsonData},
	})
	pipe.Publish(ctx, "pub:trade:"+o.Symbol, jsonData)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] trade pipeline error for %s: %v", o.ID, err)
	}
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
