package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// StreamWorker defines the interface for streaming feed connectors.
type StreamWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// TradeHistorySource pages through historical trades for a symbol, most
// recent first within the window. A non-success response is a hard error.
type TradeHistorySource interface {
	TradesSince(ctx context.Context, symbol string, since int64, limit int) ([]TradeEvent, error)
}

// BalanceSource retrieves account balances. Failures are non-fatal to the
// core; callers swallow them at the valuation boundary.
type BalanceSource interface {
	GetBalances(ctx context.Context) ([]Balance, error)
}

// PresentationSink consumes state-change notifications. Push-only; the core
// never blocks on it, so implementations must return quickly.
type PresentationSink interface {
	PriceChanged(update PriceUpdate)
	OrderBucketChanged(key string, from, to Bucket)
	ValuationChanged(total decimal.Decimal)
}

// AlertSink receives user-visible alerts.
type AlertSink interface {
	Notify(alert Alert)
}
