package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/config"
	"github.com/southecare68/crypto-webhook/internal/domain"
	"github.com/southecare68/crypto-webhook/internal/pnl"
	"github.com/southecare68/crypto-webhook/internal/ports"
	"github.com/southecare68/crypto-webhook/internal/risk"
)

var two = decimal.NewFromInt(2)

// TradeService orchestrates the trade lifecycle: it is the sole writer of
// trade status and the only component that appends fills. All writes for a
// given trade ID are serialized through a per-trade lock spanning the full
// read-compute-write sequence, so racing exits cannot both observe the same
// pre-exit net quantity.
type TradeService struct {
	cfg      *config.Config
	logger   ports.Logger
	repo     ports.LedgerRepository
	notifier ports.Notifier
	sizer    *risk.Sizer

	mu         sync.Mutex // Protects tradeLocks
	tradeLocks map[string]*sync.Mutex
}

// NewTradeService creates the lifecycle service.
func NewTradeService(
	cfg *config.Config,
	logger ports.Logger,
	repo ports.LedgerRepository,
	notifier ports.Notifier,
	sizer *risk.Sizer,
) (*TradeService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || repo == nil || notifier == nil || sizer == nil {
		return nil, fmt.Errorf("missing required dependencies for TradeService")
	}
	if !cfg.RiskBudget.IsPositive() {
		return nil, fmt.Errorf("configuration RiskBudget must be positive")
	}

	return &TradeService{
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		notifier:   notifier,
		sizer:      sizer,
		tradeLocks: make(map[string]*sync.Mutex),
	}, nil
}

// lockTrade returns the mutex serializing operations on a single trade ID.
func (s *TradeService) lockTrade(tradeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.tradeLocks[tradeID]
	if !ok {
		lock = &sync.Mutex{}
		s.tradeLocks[tradeID] = lock
	}
	return lock
}

// ExitResult carries the outcome of an exit for notification purposes.
type ExitResult struct {
	RealizedPnL decimal.Decimal
	SellQty     decimal.Decimal
	RMultiple   decimal.Decimal // RealizedPnL / configured risk budget
	Status      domain.TradeStatus
}

// OpenTrade creates a trade header and its synthetic BUY fill from an entry
// event. The trade ID comes from the event, or is derived deterministically
// from (symbol, timeframe, timestamp) when absent. Replaying an entry for an
// existing trade ID fails with ErrDuplicateTrade; nothing is overwritten.
func (s *TradeService) OpenTrade(ctx context.Context, ev domain.Event) (*domain.Trade, bool, error) {
	if ev.Symbol == "" {
		return nil, false, fmt.Errorf("entry event missing symbol: %w", ports.ErrInvalidTrade)
	}
	if !ev.Entry.IsPositive() || !ev.Stop.IsPositive() {
		return nil, false, fmt.Errorf("entry event for %s missing entry or stop price: %w", ev.Symbol, ports.ErrInvalidTrade)
	}
	riskPerUnit := ev.Entry.Sub(ev.Stop)
	if !riskPerUnit.IsPositive() {
		return nil, false, fmt.Errorf("entry %s does not exceed stop %s: %w", ev.Entry, ev.Stop, ports.ErrInvalidTrade)
	}

	size, capped, err := s.sizer.Size(ev.Entry, ev.Stop)
	if err != nil {
		return nil, false, err
	}

	openedAt := ev.At
	if openedAt.IsZero() {
		openedAt = time.Now().UTC()
	}
	tradeID := ev.TradeID
	if tradeID == "" {
		tradeID = deriveTradeID(ev.Symbol, ev.Timeframe, openedAt)
	}

	trade := &domain.Trade{
		ID:          tradeID,
		Symbol:      ev.Symbol,
		Timeframe:   ev.Timeframe,
		EntryPrice:  ev.Entry,
		StopPrice:   ev.Stop,
		RiskPerUnit: riskPerUnit,
		Size:        size,
		Status:      domain.StatusOpen,
		OpenedAt:    openedAt,
	}

	lock := s.lockTrade(tradeID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.CreateTrade(ctx, trade); err != nil {
		return nil, false, err
	}
	// Synthetic fill recording the position as taken at the entry price.
	_, err = s.repo.AppendFill(ctx, &domain.Fill{
		TradeID:   tradeID,
		Side:      domain.Buy,
		Quantity:  size,
		Price:     ev.Entry,
		Fee:       decimal.Zero,
		Timestamp: openedAt,
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info(ctx, "Trade opened", map[string]interface{}{
		"tradeID": tradeID,
		"symbol":  ev.Symbol,
		"entry":   ev.Entry.String(),
		"stop":    ev.Stop.String(),
		"size":    size.String(),
		"capped":  capped,
	})
	return trade, capped, nil
}

// ApplyExit sells half (partial) or all (full) of the current net position
// at the exit price and advances the trade status. The ledger is left
// untouched when validation fails: unknown trade, closed trade, or nothing
// held. PnL is recomputed over the full fill history after the append, and
// the R-multiple normalizes it against the configured risk budget rather
// than the trade's own realized risk.
func (s *TradeService) ApplyExit(ctx context.Context, tradeID string, exitPrice decimal.Decimal, partial bool) (*ExitResult, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("exit event missing trade_id: %w", ports.ErrUnknownTrade)
	}
	if !exitPrice.IsPositive() {
		return nil, fmt.Errorf("exit for trade %s missing exit price: %w", tradeID, ports.ErrInvalidTrade)
	}

	lock := s.lockTrade(tradeID)
	lock.Lock()
	defer lock.Unlock()

	trade, err := s.repo.FindTradeByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrUnknownTrade)
	}
	if trade.IsClosed() {
		return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrTradeClosed)
	}

	fills, err := s.repo.FindFills(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	_, netQty := pnl.Compute(fills)
	if !netQty.IsPositive() {
		return nil, fmt.Errorf("trade %s has net quantity %s: %w", tradeID, netQty, ports.ErrNoOpenPosition)
	}

	sellQty := netQty
	newStatus := domain.StatusClosed
	if partial {
		sellQty = netQty.Div(two)
		newStatus = domain.StatusPartial
	}

	fill := &domain.Fill{
		TradeID:   tradeID,
		Side:      domain.Sell,
		Quantity:  sellQty,
		Price:     exitPrice,
		Fee:       decimal.Zero,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.repo.AppendFill(ctx, fill); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTradeStatus(ctx, tradeID, newStatus); err != nil {
		return nil, err
	}

	realized, _ := pnl.Compute(append(fills, fill))
	rMultiple := realized.Div(s.sizer.RiskBudget())

	s.logger.Info(ctx, "Exit applied", map[string]interface{}{
		"tradeID":   tradeID,
		"exitPrice": exitPrice.String(),
		"sellQty":   sellQty.String(),
		"pnl":       realized.String(),
		"rMultiple": rMultiple.StringFixed(2),
		"status":    newStatus,
	})
	return &ExitResult{
		RealizedPnL: realized,
		SellQty:     sellQty,
		RMultiple:   rMultiple,
		Status:      newStatus,
	}, nil
}

// HandleEvent classifies an inbound event and dispatches it. Validation
// failures (malformed entries, unknown or closed trades, nothing held) are
// reported through the notifier and acknowledged as handled: replaying the
// same malformed event would fail identically, so there is nothing to retry.
// Storage failures propagate to the caller, whose producer owns retries.
func (s *TradeService) HandleEvent(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.EventSatEntry:
		trade, capped, err := s.OpenTrade(ctx, ev)
		if err != nil {
			return s.reportError(ctx, ev, err)
		}
		msg := fmt.Sprintf("Opened %s: size %s @ %s, stop %s",
			trade.ID, trade.Size.String(), trade.EntryPrice.String(), trade.StopPrice.String())
		if capped {
			msg += " (size capped by max notional)"
		}
		s.notify(ctx, fmt.Sprintf("Entry %s", trade.Symbol), msg)
		return nil

	case domain.EventSatTP1, domain.EventSatExit:
		partial := ev.Type == domain.EventSatTP1
		res, err := s.ApplyExit(ctx, ev.TradeID, ev.ExitPrice, partial)
		if err != nil {
			return s.reportError(ctx, ev, err)
		}
		title := fmt.Sprintf("Exit %s", ev.TradeID)
		if partial {
			title = fmt.Sprintf("TP1 %s", ev.TradeID)
		}
		s.notify(ctx, title, fmt.Sprintf("Sold %s @ %s | PnL %s | R %s | %s",
			res.SellQty.String(), ev.ExitPrice.String(),
			res.RealizedPnL.StringFixed(2), res.RMultiple.StringFixed(2), res.Status))
		return nil

	default:
		// Unrecognized types pass through to the notifier unchanged; they
		// have no ledger effect.
		s.notify(ctx, fmt.Sprintf("Alert %s", ev.Type), ev.Raw)
		return nil
	}
}

// reportError notifies validation failures and acknowledges them; anything
// else (storage failures) is returned to the caller.
func (s *TradeService) reportError(ctx context.Context, ev domain.Event, err error) error {
	if errors.Is(err, ports.ErrInvalidTrade) ||
		errors.Is(err, ports.ErrInvalidRisk) ||
		errors.Is(err, ports.ErrUnknownTrade) ||
		errors.Is(err, ports.ErrNoOpenPosition) ||
		errors.Is(err, ports.ErrDuplicateTrade) ||
		errors.Is(err, ports.ErrTradeClosed) {
		s.logger.Warn(ctx, "Event rejected", map[string]interface{}{"type": ev.Type, "tradeID": ev.TradeID, "reason": err.Error()})
		s.notify(ctx, fmt.Sprintf("Rejected %s", ev.Type), err.Error())
		return nil
	}
	s.logger.Error(ctx, err, "Event processing failed", map[string]interface{}{"type": ev.Type, "tradeID": ev.TradeID})
	return err
}

// notify delivers a notification best-effort. Failures are logged and never
// affect the outcome of the ledger mutation they describe.
func (s *TradeService) notify(ctx context.Context, title, message string) {
	if err := s.notifier.Send(ctx, title, message); err != nil {
		s.logger.Warn(ctx, "Notification delivery failed", map[string]interface{}{"title": title, "reason": err.Error()})
	}
}

// deriveTradeID builds a deterministic trade identifier from the signal
// coordinates, used when the event does not carry one.
func deriveTradeID(symbol, timeframe string, at time.Time) string {
	parts := []string{symbol}
	if timeframe != "" {
		parts = append(parts, timeframe)
	}
	parts = append(parts, fmt.Sprintf("%d", at.Unix()))
	return strings.Join(parts, "-")
}
