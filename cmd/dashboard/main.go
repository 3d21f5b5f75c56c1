// cmd/dashboard: BankNifty paper-trading dashboard.
//
// Wires the quote feed, strategy engine, paper ledger, and gateway into
// one process:
//
//	feed → session (observe → evaluate → ledger → publish) → listeners
//	                                                          ├ WS hub
//	                                                          └ auto trader
//
// Feed selection via FEED_MODE:
//
//	sim        in-process random walk (default, no external deps)
//	ws         WebSocket quote server (cmd/quoteserver)
//	smartapi   Angel One SmartAPI polling (requires ANGEL_* credentials)
package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/akashpant12/banknifty-trading/config"
	"github.com/akashpant12/banknifty-trading/internal/autotrade"
	"github.com/akashpant12/banknifty-trading/internal/gateway"
	"github.com/akashpant12/banknifty-trading/internal/ledger"
	"github.com/akashpant12/banknifty-trading/internal/logger"
	"github.com/akashpant12/banknifty-trading/internal/marketdata/sim"
	"github.com/akashpant12/banknifty-trading/internal/marketdata/smartfeed"
	"github.com/akashpant12/banknifty-trading/internal/marketdata/wsfeed"
	"github.com/akashpant12/banknifty-trading/internal/metrics"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/notification"
	"github.com/akashpant12/banknifty-trading/internal/session"
	redisstore "github.com/akashpant12/banknifty-trading/internal/store/redis"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
	"github.com/akashpant12/banknifty-trading/pkg/smartconnect"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("dashboard", slog.LevelInfo)
	log.Println("[dashboard] starting BankNifty trading dashboard...")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Instrumentation ──────────────────────────────────────────────────
	m := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ─── Ledger + journal ─────────────────────────────────────────────────
	book := ledger.NewManager(ledger.Config{
		InitialCapital:   cfg.InitialCapital,
		Symbol:           cfg.Symbol,
		MarginMultiplier: cfg.MarginMultiplier,
	})

	var journ *ledger.Journal
	if cfg.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			log.Printf("[dashboard] journal dir: %v, continuing without journal", err)
		} else if j, err := ledger.NewJournal(cfg.SQLitePath); err != nil {
			log.Printf("[dashboard] journal open failed: %v, continuing without journal", err)
		} else {
			journ = j
			book.SetJournal(j)
			defer j.Close()
		}
	}

	// ─── Redis publisher (optional) ───────────────────────────────────────
	var publisher *redisstore.Publisher
	if cfg.RedisAddr != "" {
		p, err := redisstore.New(redisstore.PublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[dashboard] redis unavailable: %v, continuing without publisher", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	// ─── Notifier ─────────────────────────────────────────────────────────
	var backends notification.Multi
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID))
		log.Println("[dashboard] telegram notifications enabled")
	}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Println("[dashboard] webhook notifications enabled")
	}
	if len(backends) == 0 {
		backends = append(backends, notification.NewLogNotifier())
	}
	var notifier notification.Notifier = backends

	// ─── Session ──────────────────────────────────────────────────────────
	sess := session.New(session.Config{
		Symbol:              cfg.Symbol,
		NotifyMinConfidence: cfg.AutoTradeMinConf,
	}, session.Deps{
		Engine:    strategy.NewEngine(),
		Ledger:    book,
		Metrics:   m,
		Health:    health,
		Publisher: publisher,
		Notifier:  notifier,
	})

	// The simulator always serves the option chain, even when quotes come
	// from elsewhere: the chain is synthetic in paper mode regardless.
	chain := sim.New(sim.Config{
		Symbol:     cfg.Symbol,
		BasePrice:  cfg.SimBasePrice,
		Volatility: cfg.SimVolatility,
	})

	hub := gateway.NewHub()
	hub.SetMetrics(m)
	sess.AddListener(hub.OnTick)

	if cfg.AutoTradeEnabled {
		trader := autotrade.New(autotrade.Config{
			Symbol:             cfg.Symbol,
			MinConfidence:      cfg.AutoTradeMinConf,
			Delay:              cfg.AutoTradeDelay,
			LotSize:            cfg.LotSize,
			MaxLots:            cfg.AutoTradeMaxLots,
			EnforceMarketHours: cfg.EnforceMarketHours,
		}, book)
		trader.SetMetrics(m)
		trader.SetNotifier(notifier)
		sess.AddListener(trader.OnTick)
		log.Printf("[dashboard] auto-trading enabled (min confidence %.2f, %d lot(s))",
			cfg.AutoTradeMinConf, cfg.AutoTradeMaxLots)
	}

	// ─── Quote feed ───────────────────────────────────────────────────────
	quoteCh := make(chan model.Quote, 100)
	startFeed(ctx, cfg, m, health, chain, quoteCh)

	var rdb *goredis.Client
	if publisher != nil {
		rdb = publisher.Client()
	}
	var journalDB *sql.DB
	if journ != nil {
		journalDB = journ.DB()
	}
	health.StartLivenessChecker(ctx, rdb, journalDB, 15*time.Second)

	go sess.Run(ctx, quoteCh)

	// ─── HTTP gateway ─────────────────────────────────────────────────────
	gw := gateway.NewServer(sess, hub, chain)
	if journ != nil {
		gw.SetJournal(journ)
	}
	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
	go func() {
		log.Printf("[dashboard] gateway listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[dashboard] gateway error: %v", err)
		}
	}()

	// ─── Shutdown ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Println("[dashboard] shutting down...")

	cancel()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	httpSrv.Shutdown(shutCtx)
	metricsSrv.Stop(shutCtx)
	log.Println("[dashboard] stopped")
}

// startFeed launches the configured quote source feeding quoteCh.
func startFeed(ctx context.Context, cfg *config.Config, m *metrics.Metrics,
	health *metrics.HealthStatus, chain *sim.Simulator, quoteCh chan<- model.Quote) {

	switch cfg.FeedMode {
	case "ws":
		ing, err := wsfeed.New(wsfeed.Config{URL: cfg.QuoteWSURL})
		if err != nil {
			log.Fatalf("[dashboard] bad QUOTE_WS_URL %q: %v", cfg.QuoteWSURL, err)
		}
		ing.OnReconnect = func() {
			m.WSReconnects.Inc()
			health.SetFeedConnected(false)
		}
		go func() {
			health.SetFeedConnected(true)
			ing.Start(ctx, quoteCh)
		}()
		log.Printf("[dashboard] feed: websocket %s", cfg.QuoteWSURL)

	case "smartapi":
		client := smartconnect.New(smartconnect.Config{
			APIKey:     cfg.AngelAPIKey,
			ClientCode: cfg.AngelClientCode,
			Password:   cfg.AngelPassword,
			TOTPSecret: cfg.AngelTOTPSecret,
		})
		loginCtx, loginCancel := context.WithTimeout(ctx, 15*time.Second)
		err := client.GenerateSession(loginCtx)
		loginCancel()
		if err != nil {
			log.Fatalf("[dashboard] smartapi login failed: %v", err)
		}
		src := smartfeed.New(client, cfg.Symbol, "", "")
		go pollFeed(ctx, src, cfg.TickInterval, m, health, quoteCh)
		log.Printf("[dashboard] feed: smartapi (%s every %s)", cfg.Symbol, cfg.TickInterval)

	default: // sim
		go pollFeed(ctx, chain, cfg.TickInterval, m, health, quoteCh)
		log.Printf("[dashboard] feed: simulator (base %.2f, every %s)",
			cfg.SimBasePrice, cfg.TickInterval)
	}
}

// pollFeed drives a pull-style QuoteSource on a fixed ticker.
func pollFeed(ctx context.Context, src model.QuoteSource, interval time.Duration,
	m *metrics.Metrics, health *metrics.HealthStatus, quoteCh chan<- model.Quote) {

	health.SetFeedConnected(true)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q, err := src.NextQuote(ctx)
			if err != nil {
				log.Printf("[dashboard] quote fetch failed: %v", err)
				health.SetFeedConnected(false)
				continue
			}
			health.SetFeedConnected(true)
			select {
			case quoteCh <- q:
			default:
				m.DroppedQuotes.Inc()
			}
		}
	}
}
