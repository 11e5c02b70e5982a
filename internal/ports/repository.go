package ports

import (
	"context"

	"github.com/southecare68/crypto-webhook/internal/domain"
)

// LedgerRepository defines the interface for the durable trade ledger:
// mutable trade headers plus an append-only fill log.
type LedgerRepository interface {
	// CreateTrade saves a new trade header. It is insert-if-absent:
	// an existing trade with the same ID is never overwritten, and
	// ErrDuplicateTrade is returned instead.
	CreateTrade(ctx context.Context, trade *domain.Trade) error
	// UpdateTradeStatus sets the lifecycle status of an existing trade.
	// Returns ErrNotFound if the trade does not exist.
	UpdateTradeStatus(ctx context.Context, tradeID string, status domain.TradeStatus) error
	// AppendFill appends a fill to the ledger and returns its assigned ID.
	// Fills are never mutated or deleted afterwards.
	AppendFill(ctx context.Context, fill *domain.Fill) (int64, error)
	// FindTradeByID retrieves a trade header by its identifier.
	// Returns nil, nil if not found.
	FindTradeByID(ctx context.Context, tradeID string) (*domain.Trade, error)
	// FindFills retrieves all fills for a trade, ordered by insertion.
	FindFills(ctx context.Context, tradeID string) ([]*domain.Fill, error)
	// FindAllTrades retrieves all trade headers, most recently opened first.
	FindAllTrades(ctx context.Context) ([]*domain.Trade, error)
}
