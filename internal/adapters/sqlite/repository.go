package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/domain"
	"github.com/southecare68/crypto-webhook/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.LedgerRepository interface using SQLite.
// Trade headers live in the trades table; fills are append-only rows in the
// fills table and are never updated or deleted.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trade_ledger.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection. WAL mode for better concurrency.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// Prices and quantities are stored as TEXT to keep decimal values exact.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		trade_id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL DEFAULT '',
		entry_price TEXT NOT NULL,
		stop_price TEXT NOT NULL,
		risk_per_unit TEXT NOT NULL,
		size TEXT NOT NULL,
		status TEXT NOT NULL,
		opened_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trade_id TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		fee TEXT NOT NULL DEFAULT '0',
		ts TIMESTAMP NOT NULL
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades (status);
	CREATE INDEX IF NOT EXISTS idx_fills_trade_id ON fills (trade_id, id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- LedgerRepository Implementation ---

// CreateTrade saves a new trade header. Insert-if-absent: a replayed entry
// for an existing trade ID returns ErrDuplicateTrade instead of overwriting
// the header, so duplicate synthetic fills cannot double-count the position.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT OR IGNORE INTO trades (trade_id, symbol, timeframe, entry_price, stop_price, risk_per_unit, size, status, opened_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Symbol, trade.Timeframe,
		trade.EntryPrice.String(), trade.StopPrice.String(), trade.RiskPerUnit.String(),
		trade.Size.String(), string(trade.Status), trade.OpenedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s (%v): %w", trade.ID, err, ports.ErrStorage)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s (%v): %w", trade.ID, err, ports.ErrStorage)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s already exists: %w", trade.ID, ports.ErrDuplicateTrade)
	}
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol})
	return nil
}

// UpdateTradeStatus sets the lifecycle status of an existing trade.
func (r *Repository) UpdateTradeStatus(ctx context.Context, tradeID string, status domain.TradeStatus) error {
	const query = `UPDATE trades SET status = ? WHERE trade_id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), tradeID)
	if err != nil {
		return fmt.Errorf("failed to update status for trade %s (%v): %w", tradeID, err, ports.ErrStorage)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s (%v): %w", tradeID, err, ports.ErrStorage)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for status update: %w", tradeID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade status updated", map[string]interface{}{"tradeID": tradeID, "status": status})
	return nil
}

// AppendFill appends a fill to the ledger and returns its assigned ID.
func (r *Repository) AppendFill(ctx context.Context, fill *domain.Fill) (int64, error) {
	const query = `
	INSERT INTO fills (trade_id, side, quantity, price, fee, ts)
	VALUES (?, ?, ?, ?, ?, ?)`

	ts := fill.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		fill.TradeID, string(fill.Side),
		fill.Quantity.String(), fill.Price.String(), fill.Fee.String(), ts)
	if err != nil {
		return 0, fmt.Errorf("failed to append fill for trade %s (%v): %w", fill.TradeID, err, ports.ErrStorage)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for fill on trade %s (%v): %w", fill.TradeID, err, ports.ErrStorage)
	}
	fill.ID = id // Update the domain object with the ID
	fill.Timestamp = ts
	r.logger.Debug(ctx, "Fill appended", map[string]interface{}{"fillID": id, "tradeID": fill.TradeID, "side": fill.Side})
	return id, nil
}

// FindTradeByID retrieves a trade header by its identifier.
func (r *Repository) FindTradeByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	const query = `
	SELECT trade_id, symbol, timeframe, entry_price, stop_price, risk_per_unit, size, status, opened_at
	FROM trades
	WHERE trade_id = ?`

	row := r.db.QueryRowContext(ctx, query, tradeID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": tradeID})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade %s (%v): %w", tradeID, err, ports.ErrStorage)
	}
	return trade, nil
}

// FindFills retrieves all fills for a trade in insertion order.
func (r *Repository) FindFills(ctx context.Context, tradeID string) ([]*domain.Fill, error) {
	const query = `
	SELECT id, trade_id, side, quantity, price, fee, ts
	FROM fills
	WHERE trade_id = ?
	ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fills for trade %s (%v): %w", tradeID, err, ports.ErrStorage)
	}
	defer rows.Close()

	fills := make([]*domain.Fill, 0)
	for rows.Next() {
		fill, err := scanFill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fill during FindFills (%v): %w", err, ports.ErrStorage)
		}
		fills = append(fills, fill)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fill rows (%v): %w", err, ports.ErrStorage)
	}
	return fills, nil
}

// FindAllTrades retrieves all trade headers, most recently opened first.
func (r *Repository) FindAllTrades(ctx context.Context) ([]*domain.Trade, error) {
	const query = `
	SELECT trade_id, symbol, timeframe, entry_price, stop_price, risk_per_unit, size, status, opened_at
	FROM trades
	ORDER BY opened_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades (%v): %w", err, ports.ErrStorage)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAllTrades (%v): %w", err, ports.ErrStorage)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows (%v): %w", err, ports.ErrStorage)
	}
	return trades, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var entryPrice, stopPrice, riskPerUnit, size, status string
	err := s.Scan(&t.ID, &t.Symbol, &t.Timeframe, &entryPrice, &stopPrice, &riskPerUnit, &size, &status, &t.OpenedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if t.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return nil, fmt.Errorf("bad entry_price for trade %s: %w", t.ID, err)
	}
	if t.StopPrice, err = decimal.NewFromString(stopPrice); err != nil {
		return nil, fmt.Errorf("bad stop_price for trade %s: %w", t.ID, err)
	}
	if t.RiskPerUnit, err = decimal.NewFromString(riskPerUnit); err != nil {
		return nil, fmt.Errorf("bad risk_per_unit for trade %s: %w", t.ID, err)
	}
	if t.Size, err = decimal.NewFromString(size); err != nil {
		return nil, fmt.Errorf("bad size for trade %s: %w", t.ID, err)
	}
	t.Status = domain.TradeStatus(status)
	return t, nil
}

// scanFill scans a row into a domain.Fill struct.
func scanFill(s scanner) (*domain.Fill, error) {
	f := &domain.Fill{}
	var side, quantity, price, fee string
	err := s.Scan(&f.ID, &f.TradeID, &side, &quantity, &price, &fee, &f.Timestamp)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	f.Side = domain.OrderSide(side)
	if f.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("bad quantity for fill %d: %w", f.ID, err)
	}
	if f.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("bad price for fill %d: %w", f.ID, err)
	}
	if f.Fee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("bad fee for fill %d: %w", f.ID, err)
	}
	return f, nil
}
