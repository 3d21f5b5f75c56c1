// cmd/quoteserver: demo WebSocket quote server.
// Broadcasts simulated BANKNIFTY quotes so dashboards can run against a
// shared feed without broker credentials.
//
// Quote JSON shape is identical to model.Quote:
//
//	{"symbol":"BANKNIFTY","last_price":52013.25,"open":52140.0,...}
//
// Config (env vars):
//
//	QUOTE_SERVER_ADDR   listen address (default: ":9001")
//	SYMBOL              broadcast symbol (default: "BANKNIFTY")
//	SIM_BASE_PRICE      walk anchor price (default: "52000")
//	SIM_VOLATILITY      per-tick walk fraction (default: "0.0015")
//	TICK_INTERVAL_MS    broadcast interval milliseconds (default: "2000")
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akashpant12/banknifty-trading/internal/marketdata/sim"
)

// ─── Hub ──────────────────────────────────────────────────────────────────────

type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default: // slow client, drop quote
		}
	}
}

// ─── WebSocket handler ────────────────────────────────────────────────────────

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

func wsHandler(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[quoteserver] upgrade error: %v", err)
			return
		}
		log.Printf("[quoteserver] client connected: %s", r.RemoteAddr)

		ch := h.register(conn)
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Printf("[quoteserver] client disconnected: %s", r.RemoteAddr)
		}()

		// Write pump: sends quote JSON to this client.
		for msg := range ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// ─── Quote generator ──────────────────────────────────────────────────────────

func runGenerator(h *hub, src *sim.Simulator, intervalMs int) {
	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	ctx := context.Background()
	for range ticker.C {
		q, err := src.NextQuote(ctx)
		if err != nil {
			continue
		}
		h.broadcast(q.JSON())
	}
}

// ─── main ─────────────────────────────────────────────────────────────────────

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[quoteserver] starting demo quote server...")

	addr := envOrDefault("QUOTE_SERVER_ADDR", ":9001")
	symbol := envOrDefault("SYMBOL", "BANKNIFTY")
	basePrice := envFloatOrDefault("SIM_BASE_PRICE", 52000)
	volatility := envFloatOrDefault("SIM_VOLATILITY", 0.0015)
	intervalMs := envIntOrDefault("TICK_INTERVAL_MS", 2000)

	src := sim.New(sim.Config{
		Symbol:     symbol,
		BasePrice:  basePrice,
		Volatility: volatility,
	})
	log.Printf("[quoteserver] symbol=%s base=%.2f volatility=%.4f interval=%dms",
		symbol, basePrice, volatility, intervalMs)

	h := newHub()
	go runGenerator(h, src, intervalMs)

	http.HandleFunc("/ws", wsHandler(h))
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"status":"ok","service":"quoteserver"}`)
	})

	log.Printf("[quoteserver] listening on %s  (WebSocket: ws://localhost%s/ws)", addr, addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("[quoteserver] server error: %v", err)
	}
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
