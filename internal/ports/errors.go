package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Ledger / Lifecycle Errors
	ErrInvalidTrade   = errors.New("invalid trade entry (missing fields or non-positive risk)")
	ErrInvalidRisk    = errors.New("risk per unit must be positive (entry must exceed stop)")
	ErrUnknownTrade   = errors.New("exit references an unknown trade")
	ErrNoOpenPosition = errors.New("no open position quantity to exit")
	ErrDuplicateTrade = errors.New("trade already exists for this identifier")
	ErrTradeClosed    = errors.New("trade is closed and accepts no further fills")

	// Storage Errors
	ErrStorage        = errors.New("ledger storage failure")
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")

	// Notification Errors
	ErrNotifyFailed = errors.New("push notification delivery failed")
)
