package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

// instrumentState is the per-instrument accumulator pair plus last trade.
// Guarded by its own mutex so instruments never contend with each other;
// Vwap reads always observe a consistent (pv, v) snapshot.
type instrumentState struct {
	mu        sync.Mutex
	lastTrade *domain.TradeEvent
	pv        decimal.Decimal // cumulative price*volume
	v         decimal.Decimal // cumulative volume
	precision int32           // VWAP rounding places
}

// PriceBook tracks last traded prices and rolling VWAP accumulators for a
// fixed set of instruments known at startup.
type PriceBook struct {
	instruments map[string]*instrumentState
	onChanged   func(domain.PriceUpdate)
}

// NewPriceBook creates a PriceBook for the given symbol -> VWAP precision
// set. onChanged is invoked whenever a trade moves the price; it runs on the
// delivery path and must stay fast.
func NewPriceBook(precisions map[string]int32, onChanged func(domain.PriceUpdate)) *PriceBook {
	instruments := make(map[string]*instrumentState, len(precisions))
	for symbol, precision := range precisions {
		instruments[symbol] = &instrumentState{
			pv:        decimal.Zero,
			v:         decimal.Zero,
			precision: precision,
		}
	}
	return &PriceBook{instruments: instruments, onChanged: onChanged}
}

// Symbols returns the tracked symbols in stable order.
func (b *PriceBook) Symbols() []string {
	symbols := make([]string, 0, len(b.instruments))
	for s := range b.instruments {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// ObserveTrade records one live or historical trade: raises the
// price-changed notification when the price moved (with the stored state
// still showing the old price), then updates the last price and adds the
// trade into the VWAP accumulators. Equal prices accumulate silently.
func (b *PriceBook) ObserveTrade(trade domain.TradeEvent) {
	st, ok := b.instruments[trade.Symbol]
	if !ok {
		slog.Warn("Trade for untracked symbol dropped", slog.String("symbol", trade.Symbol))
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.lastTrade != nil && !st.lastTrade.Price.Equal(trade.Price) && b.onChanged != nil {
		old := st.lastTrade.Price
		b.onChanged(domain.PriceUpdate{Symbol: trade.Symbol, Old: &old, Trade: trade})
	}

	st.lastTrade = &trade
	st.pv = st.pv.Add(trade.Price.Mul(trade.Amount))
	st.v = st.v.Add(trade.Amount)
}

// SeedLastPrice installs a starting last price fetched over REST, without
// touching the accumulators or raising a notification.
func (b *PriceBook) SeedLastPrice(symbol string, price decimal.Decimal) {
	st, ok := b.instruments[symbol]
	if !ok {
		return
	}
	st.mu.Lock()
	st.lastTrade = &domain.TradeEvent{Symbol: symbol, Price: price}
	st.mu.Unlock()
}

// SeedAccumulators installs the backfilled sums for a symbol. This is a
// one-time overwrite: a live trade landing mid-backfill loses to the seed
// (last-writer-wins, accepted small-window inconsistency).
func (b *PriceBook) SeedAccumulators(symbol string, pv, v decimal.Decimal) {
	st, ok := b.instruments[symbol]
	if !ok {
		return
	}
	st.mu.Lock()
	st.pv = pv
	st.v = v
	st.mu.Unlock()
}

// LastPrice returns the most recently observed price, or nil before the
// first trade.
func (b *PriceBook) LastPrice(symbol string) *decimal.Decimal {
	st, ok := b.instruments[symbol]
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.lastTrade == nil {
		return nil
	}
	p := st.lastTrade.Price
	return &p
}

// Vwap returns pv/v rounded to the instrument's precision. Before any
// volume has accumulated it returns domain.ErrNoPrice, which presentations
// render as "Calculating".
func (b *PriceBook) Vwap(symbol string) (decimal.Decimal, error) {
	st, ok := b.instruments[symbol]
	if !ok {
		return decimal.Zero, domain.ErrUnknownSymbol
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.v.IsZero() {
		return decimal.Zero, domain.ErrNoPrice
	}
	return st.pv.Div(st.v).Round(st.precision), nil
}

// Accumulators returns a consistent snapshot of the (pv, v) pair.
func (b *PriceBook) Accumulators(symbol string) (pv, v decimal.Decimal) {
	st, ok := b.instruments[symbol]
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pv, st.v
}
