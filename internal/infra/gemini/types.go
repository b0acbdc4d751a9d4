package gemini

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// OrderEventsPath is the signed request path for the order-event stream.
	OrderEventsPath = "/v1/order/events"

	// MarketDataPath is the per-symbol market data stream path prefix.
	MarketDataPath = "/v1/marketdata/"

	maxRetries       = 10
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
)

// tradeHistoryEntry is one element of the /v1/trades response,
// most recent first.
type tradeHistoryEntry struct {
	Timestamp   int64           `json:"timestamp"`
	TimestampMs int64           `json:"timestampms"`
	TID         int64           `json:"tid"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Exchange    string          `json:"exchange"`
	Type        string          `json:"type"`
}

// balanceEntry is one element of the /v1/balances response.
type balanceEntry struct {
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Available decimal.Decimal `json:"available"`
}

// tickerResponse is the /v1/pubticker response; only the last traded
// price is consumed.
type tickerResponse struct {
	Bid  decimal.Decimal `json:"bid"`
	Ask  decimal.Decimal `json:"ask"`
	Last decimal.Decimal `json:"last"`
}
