package domain

// OrderSide represents the side of a fill (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// TradeStatus represents the lifecycle status of a trade.
// Transitions are monotonic: OPEN -> PARTIAL -> CLOSED, or OPEN -> CLOSED
// directly on a full exit. A CLOSED trade never reopens.
type TradeStatus string

const (
	StatusOpen    TradeStatus = "OPEN"
	StatusPartial TradeStatus = "PARTIAL"
	StatusClosed  TradeStatus = "CLOSED"
)

// EventType classifies inbound webhook events.
type EventType string

const (
	EventSatEntry EventType = "SAT_ENTRY" // open a new trade
	EventSatTP1   EventType = "SAT_TP1"   // partial take-profit (half the open quantity)
	EventSatExit  EventType = "SAT_EXIT"  // full exit (entire open quantity)
	EventCoreOn   EventType = "CORE_ON"   // regime signal, notification only
	EventCoreOff  EventType = "CORE_OFF"  // regime signal, notification only
)
