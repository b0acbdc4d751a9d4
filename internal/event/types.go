package event

import (
	"github.com/shopspring/decimal"
)

// Event is a classified message from the order-event stream.
type Event interface {
	Kind() string
}

// OrderEvent is the generic order-lifecycle variant. It carries its own
// type field; observed values include "booked", "initial", "closed" and
// "accepted". Specialized variants embed it.
type OrderEvent struct {
	Type              string          `json:"type"`
	OrderID           string          `json:"order_id"`
	EventID           string          `json:"event_id"`
	ClientOrderID     string          `json:"client_order_id"`
	APISession        string          `json:"api_session"`
	Symbol            string          `json:"symbol"`
	Side              string          `json:"side"`
	OrderType         string          `json:"order_type"`
	TimestampMs       int64           `json:"timestampms"`
	IsLive            bool            `json:"is_live"`
	IsCancelled       bool            `json:"is_cancelled"`
	Price             decimal.Decimal `json:"price"`
	OriginalAmount    decimal.Decimal `json:"original_amount"`
	ExecutedAmount    decimal.Decimal `json:"executed_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	AvgExecutionPrice decimal.Decimal `json:"avg_execution_price"`
}

func (e *OrderEvent) Kind() string { return e.Type }

// FillDetail carries the execution fields only present on fill events.
type FillDetail struct {
	TradeID     string          `json:"trade_id"`
	Liquidity   string          `json:"liquidity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	FeeCurrency string          `json:"fee_currency"`
}

// FillEvent is the full execution-detail variant.
type FillEvent struct {
	OrderEvent
	Fill FillDetail `json:"fill"`
}

// CancelEvent covers both "cancelled" and "cancel_rejected" messages.
type CancelEvent struct {
	OrderEvent
	Reason          string `json:"reason"`
	CancelCommandID string `json:"cancel_command_id"`
}

func (e *CancelEvent) Kind() string { return "cancelled" }

// HeartbeatEvent is the periodic liveness signal on the order-event stream.
// It never flows through the order registry.
type HeartbeatEvent struct {
	TimestampMs int64 `json:"timestampms"`
}

func (e *HeartbeatEvent) Kind() string { return "heartbeat" }

// marketEnvelope is the homogeneous market-data feed payload. Only envelopes
// of type "update" carry usable sub-events.
type marketEnvelope struct {
	Type        string           `json:"type"`
	EventID     int64            `json:"eventId"`
	TimestampMs int64            `json:"timestampms"`
	Events      []marketSubEvent `json:"events"`
}

type marketSubEvent struct {
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	MakerSide string          `json:"makerSide"`
}
