package ledger

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akashpant12/banknifty-trading/internal/model"
)

// Journal persists executed fills to SQLite for analysis and audit.
// It is an audit trail only: the in-memory ledger stays the source of
// truth and is never restored from it.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id    TEXT NOT NULL,
		symbol      TEXT NOT NULL,
		side        TEXT NOT NULL,
		qty         INTEGER NOT NULL,
		price       REAL NOT NULL,
		strategy    TEXT,
		profit_loss REAL DEFAULT 0,
		executed_at DATETIME NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);
	CREATE INDEX IF NOT EXISTS idx_trades_executed_at ON trades(executed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened trade journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// RecordTrade persists an executed fill to the journal.
func (j *Journal) RecordTrade(o model.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO trades (order_id, symbol, side, qty, price, strategy, profit_loss, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.Symbol,
		string(o.Side),
		o.Quantity,
		o.Price,
		o.Strategy,
		o.ProfitLoss,
		o.Timestamp.Format(time.RFC3339),
	)
	return err
}

// TradeRecord represents a row from the trades table.
type TradeRecord struct {
	ID         int64   `json:"id"`
	OrderID    string  `json:"order_id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        int64   `json:"qty"`
	Price      float64 `json:"price"`
	Strategy   string  `json:"strategy"`
	ProfitLoss float64 `json:"profit_loss"`
	ExecutedAt string  `json:"executed_at"`
}

// GetTrades returns the last N journaled trades, newest first.
func (j *Journal) GetTrades(limit int) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, order_id, symbol, side, qty, price, strategy, profit_loss, executed_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Symbol, &t.Side, &t.Qty,
			&t.Price, &t.Strategy, &t.ProfitLoss, &t.ExecutedAt); err != nil {
			continue
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// DB exposes the underlying handle for health probes.
func (j *Journal) DB() *sql.DB { return j.db }

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
