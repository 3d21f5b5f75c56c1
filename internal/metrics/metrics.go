// Package metrics exposes Prometheus instrumentation and the /healthz
// endpoint for the trading dashboard.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading dashboard.
type Metrics struct {
	TicksTotal    prometheus.Counter
	DroppedQuotes prometheus.Counter
	WSReconnects  prometheus.Counter

	SignalsTotal   *prometheus.CounterVec // labels: strategy, action
	EvalDur        prometheus.Histogram   // per-tick strategy evaluation latency
	OrdersExecuted *prometheus.CounterVec // labels: side
	OrdersFailed   prometheus.Counter
	OrdersPending  prometheus.Gauge

	Equity       prometheus.Gauge // cash + open positions marked to market
	RealizedPL   prometheus.Gauge
	UnrealizedPL prometheus.Gauge
	LastPrice    prometheus.Gauge

	WSClients prometheus.Gauge // connected dashboard clients
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ticks_total",
			Help: "Total quotes observed by the trading session",
		}),
		DroppedQuotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_dropped_quotes_total",
			Help: "Quotes dropped because the session channel was full",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_feed_reconnects_total",
			Help: "Quote feed reconnection attempts",
		}),

		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_signals_total",
			Help: "Signals emitted by strategy and action",
		}, []string{"strategy", "action"}),
		EvalDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_strategy_eval_duration_seconds",
			Help:    "Per-tick strategy evaluation latency",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		OrdersExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_orders_executed_total",
			Help: "Executed paper orders by side",
		}, []string{"side"}),
		OrdersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_orders_failed_total",
			Help: "Orders rejected at execution (insufficient cash, oversell)",
		}),
		OrdersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_orders_pending",
			Help: "Orders currently awaiting execution",
		}),

		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_equity_rupees",
			Help: "Cash plus open positions marked to market",
		}),
		RealizedPL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_realized_pl_rupees",
			Help: "Realized P&L of open positions",
		}),
		UnrealizedPL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_unrealized_pl_rupees",
			Help: "Unrealized P&L of open positions",
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_last_price_rupees",
			Help: "Last observed index price",
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Connected dashboard WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.DroppedQuotes,
		m.WSReconnects,
		m.SignalsTotal,
		m.EvalDur,
		m.OrdersExecuted,
		m.OrdersFailed,
		m.OrdersPending,
		m.Equity,
		m.RealizedPL,
		m.UnrealizedPL,
		m.LastPrice,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	FeedConnected  bool      `json:"feed_connected"`
	LastTickTime   time.Time `json:"last_tick_time"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetFeedConnected(v bool) {
	h.mu.Lock()
	h.FeedConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks. Nil dependencies
// are skipped.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.FeedConnected {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		FeedConnected   bool    `json:"feed_connected"`
		LastTickTime    string  `json:"last_tick_time"`
		TickAge         string  `json:"tick_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		FeedConnected:   h.FeedConnected,
		LastTickTime:    h.LastTickTime.Format(time.RFC3339),
		TickAge:         tickAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
