package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akashpant12/banknifty-trading/internal/ledger"
	"github.com/akashpant12/banknifty-trading/internal/markethours"
	"github.com/akashpant12/banknifty-trading/internal/model"
	"github.com/akashpant12/banknifty-trading/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChainProvider builds an option chain around the given spot price.
type ChainProvider interface {
	OptionChain(spot float64) []model.OptionChainRow
}

// Server wires the REST API and the WS hub over the trading session.
type Server struct {
	sess  *session.Session
	hub   *Hub
	chain ChainProvider   // optional
	journ *ledger.Journal // optional, /api/journal
}

// NewServer creates the gateway server.
func NewServer(sess *session.Session, hub *Hub, chain ChainProvider) *Server {
	return &Server{sess: sess, hub: hub, chain: chain}
}

// SetJournal enables the /api/journal endpoint.
func (s *Server) SetJournal(j *ledger.Journal) { s.journ = j }

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)

	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/optionchain", s.handleOptionChain)
	mux.HandleFunc("/api/signals", s.handleSignals)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/trades", s.handleTrades)
	mux.HandleFunc("/api/journal", s.handleJournal)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/orders/execute", s.handleExecute)
	mux.HandleFunc("/api/orders/cancel", s.handleCancel)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/market", s.handleMarket)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade error: %v", err)
		return
	}
	s.hub.HandleConn(conn)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := s.sess.LastQuote()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no quote yet")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleOptionChain(w http.ResponseWriter, r *http.Request) {
	if s.chain == nil {
		writeError(w, http.StatusNotFound, "option chain not available")
		return
	}
	q, ok := s.sess.LastQuote()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no quote yet")
		return
	}
	writeJSON(w, http.StatusOK, s.chain.OptionChain(q.LastPrice))
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Engine().GetSignals())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Ledger().GetPositions())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.sess.Ledger().GetTrades()
	if limit := queryLimit(r, 0); limit > 0 && limit < len(trades) {
		trades = trades[len(trades)-limit:]
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journ == nil {
		writeError(w, http.StatusNotFound, "journal not enabled")
		return
	}
	records, err := s.journ.GetTrades(queryLimit(r, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "journal read failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type placeOrderRequest struct {
	Side     model.Side `json:"side"`
	Quantity int64      `json:"quantity"`
	Price    float64    `json:"price,omitempty"`
	Strategy string     `json:"strategy,omitempty"`
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		SetCORS(w)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.sess.Ledger().GetPendingOrders())

	case http.MethodPost:
		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.Side != model.SideBuy && req.Side != model.SideSell {
			writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
			return
		}
		if req.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "quantity must be positive")
			return
		}
		price := req.Price
		if price <= 0 {
			q, ok := s.sess.LastQuote()
			if !ok {
				writeError(w, http.StatusServiceUnavailable, "no market price available")
				return
			}
			price = q.LastPrice
		}
		o := s.sess.Ledger().PlaceOrder(s.sess.Symbol(), req.Side, req.Quantity, price, req.Strategy)
		writeJSON(w, http.StatusCreated, o)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type orderIDRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req orderIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "order id required")
		return
	}
	if !s.sess.Ledger().ExecuteOrder(req.ID) {
		writeError(w, http.StatusUnprocessableEntity, "execution rejected")
		return
	}
	for _, fill := range s.sess.Ledger().GetTrades() {
		if fill.ID == req.ID {
			s.hub.BroadcastTrade(fill)
			writeJSON(w, http.StatusOK, fill)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "executed"})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req orderIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "order id required")
		return
	}
	if !s.sess.Ledger().CancelOrder(req.ID) {
		writeError(w, http.StatusUnprocessableEntity, "cancel rejected")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	q, ok := s.sess.LastQuote()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no quote yet")
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Ledger().GetPortfolioSummary(q.LastPrice))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	resp := map[string]any{
		"open":   markethours.IsMarketOpen(now),
		"status": markethours.StatusString(now),
	}
	if name := markethours.HolidayName(now); name != "" {
		resp["holiday"] = name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.sess.Engine().Reset()
	s.sess.Ledger().Reset()
	log.Println("[gateway] session reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
		"history":    s.sess.Engine().HistoryLen(),
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return def
}
