package domain

import "github.com/shopspring/decimal"

// Bucket is the mutually exclusive lifecycle category an order is displayed
// under. An order belongs to at most one bucket at a time; BucketNone covers
// both "never seen" and the closed-but-partially-executed terminal state.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketPending
	BucketActive
	BucketFilled
	BucketCancelled
)

func (b Bucket) String() string {
	switch b {
	case BucketPending:
		return "Pending"
	case BucketActive:
		return "Active"
	case BucketFilled:
		return "Filled"
	case BucketCancelled:
		return "Cancelled"
	default:
		return "None"
	}
}

// Order event types delivered on the order-event stream. Anything not listed
// here still decodes into the generic variant and carries its type verbatim.
const (
	OrderEventBooked    = "booked"
	OrderEventInitial   = "initial"
	OrderEventClosed    = "closed"
	OrderEventFill      = "fill"
	OrderEventCancelled = "cancelled"
	OrderEventRejected  = "cancel_rejected"
)

// OrderRecord is the registry's view of one logical order. The exchange
// assigns OrderID at the booked transition; before that only ClientOrderID
// identifies the order.
type OrderRecord struct {
	OrderID        string          `json:"order_id"`
	ClientOrderID  string          `json:"client_order_id"`
	Symbol         string          `json:"symbol"`
	Side           string          `json:"side"`
	Price          decimal.Decimal `json:"price"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	ExecutedAmount decimal.Decimal `json:"executed_amount"`
	Status         string          `json:"status"`
	IsCancelled    bool            `json:"is_cancelled"`
	TimestampMs    int64           `json:"timestampms"`
}

// Key returns the durable identity: the exchange id once booked, otherwise
// the client-assigned id.
func (o *OrderRecord) Key() string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.ClientOrderID
}

// IsFilled reports whether the order has executed in full.
func (o *OrderRecord) IsFilled() bool {
	return !o.OriginalAmount.IsZero() && o.ExecutedAmount.Equal(o.OriginalAmount)
}

// PendingOrder is an outstanding submission that has not yet been
// acknowledged by the exchange. Only the client id exists at this point.
type PendingOrder struct {
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Amount        decimal.Decimal `json:"amount"`
}
