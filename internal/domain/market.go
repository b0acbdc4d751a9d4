package domain

import "github.com/shopspring/decimal"

// TradeEvent is a single executed trade observed on the market data feed
// (live stream or historical backfill). Immutable once observed.
type TradeEvent struct {
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	TimestampMs int64           `json:"timestampms"`
}

// PriceUpdate is pushed to the presentation sink when the traded price moves.
// Old carries the price stored before this trade so the sink can render a
// +/- delta; it is nil when no prior price exists for the symbol.
type PriceUpdate struct {
	Symbol string
	Old    *decimal.Decimal
	Trade  TradeEvent
}

// Delta returns new minus old price, or nil when there is no old price.
func (u *PriceUpdate) Delta() *decimal.Decimal {
	if u.Old == nil {
		return nil
	}
	d := u.Trade.Price.Sub(*u.Old)
	return &d
}
