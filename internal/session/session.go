// Package session runs the per-tick trading pipeline: observe the quote,
// evaluate every strategy against the updated history, refresh the
// ledger, then fan the results out to metrics, Redis, notifiers, and
// any registered listeners (the WebSocket hub, the auto trader).
//
// The price history is appended exactly once per tick, before any
// strategy runs, so all strategies see the same window.
package session

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/akashpant12/banknifty-trading/internal/ledger"
	"github.com/akashpant12/banknifty-trading/internal/logger"
	"github.com/akashpant12/banknifty-trading/internal/metrics"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/notification"
	redisstore "github.com/akashpant12/banknifty-trading/internal/store/redis"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

// Listener receives every processed tick with the signals it produced.
// Called synchronously on the session goroutine; do not block.
type Listener func(q model.Quote, signals []strategy.Signal)

// Config holds session policy.
type Config struct {
	Symbol string

	// NotifyMinConfidence is the cutoff above which a combined signal is
	// pushed to the notifier. Zero disables signal notifications.
	NotifyMinConfidence float64
}

// Deps are the session's collaborators. Engine and Ledger are required;
// the rest are optional and skipped when nil.
type Deps struct {
	Engine    *strategy.Engine
	Ledger    *ledger.Manager
	Metrics   *metrics.Metrics
	Health    *metrics.HealthStatus
	Publisher *redisstore.Publisher
	Notifier  notification.Notifier
}

// Session owns the tick loop state. Safe for concurrent use.
type Session struct {
	cfg  Config
	deps Deps

	mu        sync.Mutex
	lastQuote model.Quote
	hasQuote  bool
	listeners []Listener
}

// New creates a session.
func New(cfg Config, deps Deps) *Session {
	if cfg.Symbol == "" {
		cfg.Symbol = "BANKNIFTY"
	}
	return &Session{cfg: cfg, deps: deps}
}

// AddListener registers a tick listener. Not safe to call after Run starts.
func (s *Session) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// LastQuote returns the most recent processed quote.
func (s *Session) LastQuote() (model.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuote, s.hasQuote
}

// Symbol returns the tracked index symbol.
func (s *Session) Symbol() string { return s.cfg.Symbol }

// Engine exposes the strategy engine for read access (signal log).
func (s *Session) Engine() *strategy.Engine { return s.deps.Engine }

// Ledger exposes the order manager.
func (s *Session) Ledger() *ledger.Manager { return s.deps.Ledger }

// Run consumes quotes until ctx is cancelled or quoteCh closes.
func (s *Session) Run(ctx context.Context, quoteCh <-chan model.Quote) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-quoteCh:
			if !ok {
				return
			}
			s.HandleQuote(ctx, q)
		}
	}
}

// HandleQuote processes a single tick and returns the signals it emitted.
func (s *Session) HandleQuote(ctx context.Context, q model.Quote) []strategy.Signal {
	start := time.Now()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(q.Symbol, q.Timestamp))

	e := s.deps.Engine
	e.Observe(q)

	// One evaluation pass per tick: every strategy sees the same
	// post-observe window.
	signals := e.EvaluateAll(q)
	var combined *strategy.Signal
	for i := range signals {
		if signals[i].Strategy == "Combined (Multi)" {
			combined = &signals[i]
		}
	}
	for _, sig := range signals {
		attrs := []any{
			"strategy", sig.Strategy,
			"action", string(sig.Action),
			"confidence", sig.Confidence,
		}
		slog.Info("signal emitted", append(attrs, logger.LogWithTrace(ctx)...)...)
	}

	s.deps.Ledger.UpdatePositions(q.LastPrice)

	s.mu.Lock()
	s.lastQuote = q
	s.hasQuote = true
	s.mu.Unlock()

	s.publish(ctx, q, signals, combined)
	s.record(q, signals, time.Since(start))

	for _, l := range s.listeners {
		l(q, signals)
	}
	return signals
}

func (s *Session) publish(ctx context.Context, q model.Quote, signals []strategy.Signal, combined *strategy.Signal) {
	if p := s.deps.Publisher; p != nil {
		p.PublishQuote(ctx, q)
		for _, sig := range signals {
			p.PublishSignal(ctx, s.cfg.Symbol, sig)
		}
	}

	if n := s.deps.Notifier; n != nil && s.cfg.NotifyMinConfidence > 0 &&
		combined != nil && combined.Confidence >= s.cfg.NotifyMinConfidence {
		if err := n.Send(ctx, notification.SignalAlert(*combined)); err != nil {
			log.Printf("[session] signal notification failed: %v", err)
		}
	}
}

func (s *Session) record(q model.Quote, signals []strategy.Signal, evalDur time.Duration) {
	if h := s.deps.Health; h != nil {
		h.SetLastTickTime(q.Timestamp)
	}
	m := s.deps.Metrics
	if m == nil {
		return
	}
	m.TicksTotal.Inc()
	m.EvalDur.Observe(evalDur.Seconds())
	m.LastPrice.Set(q.LastPrice)
	for _, sig := range signals {
		m.SignalsTotal.WithLabelValues(sig.Strategy, string(sig.Action)).Inc()
	}

	summary := s.deps.Ledger.GetPortfolioSummary(q.LastPrice)
	m.Equity.Set(summary.TotalValue)
	m.RealizedPL.Set(summary.RealizedPL)
	m.UnrealizedPL.Set(summary.UnrealizedPL)
	m.OrdersPending.Set(float64(len(s.deps.Ledger.GetPendingOrders())))
}
