// Package gateway exposes the dashboard surface: a REST API over the
// session state and a WebSocket hub that streams quotes, signals, and
// fills to connected dashboards.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akashpant12/banknifty-trading/internal/metrics"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/strategy"
)

// Hub manages WebSocket clients and fans tick envelopes out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	// Latest quote envelope, replayed to clients on connect.
	latestQuote []byte

	metrics *metrics.Metrics // optional
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// SetMetrics attaches the WS client gauge.
func (h *Hub) SetMetrics(m *metrics.Metrics) { h.metrics = m }

// OnTick is the session listener: it broadcasts the quote and any signals
// the tick produced. Envelope shape:
//
//	{"type":"quote","data":{...},"ts":"..."}
//	{"type":"signal","data":{...},"ts":"..."}
func (h *Hub) OnTick(q model.Quote, signals []strategy.Signal) {
	if env, err := envelope("quote", q); err == nil {
		h.mu.Lock()
		h.latestQuote = env
		h.mu.Unlock()
		h.broadcast(env)
	}
	for _, sig := range signals {
		if env, err := envelope("signal", sig); err == nil {
			h.broadcast(env)
		}
	}
}

// BroadcastTrade pushes an executed fill to all clients.
func (h *Hub) BroadcastTrade(o model.Order) {
	if env, err := envelope("trade", o); err == nil {
		h.broadcast(env)
	}
}

func envelope(msgType string, data any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": msgType,
		"data": data,
		"ts":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default: // slow client, drop message
		}
	}
}

// HandleConn registers an upgraded WebSocket connection and starts its
// read/write pumps.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	latest := h.latestQuote
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	// Seed the new client with the latest quote so the dashboard renders
	// immediately instead of waiting for the next tick.
	if latest != nil {
		client.send <- latest
	}

	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
