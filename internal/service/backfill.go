package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

const (
	// BackfillWindow is the rolling VWAP lookback.
	BackfillWindow = 24 * time.Hour

	// backfillPageLimit is how many trades one history page may carry.
	backfillPageLimit = 500

	// backfillFloor exhausts the loop: stop once a page carries this many
	// trades or fewer, or once the cursor is within this many seconds of
	// the window end. The second guard terminates even on markets busy
	// enough to fill every page.
	backfillFloor = 10
)

// Backfiller seeds the PriceBook accumulators with the previous 24 hours of
// trades, one instrument at a time, while live observation keeps running.
type Backfiller struct {
	source domain.TradeHistorySource
	book   *PriceBook
	now    func() time.Time
}

// NewBackfiller creates a Backfiller reading from source into book.
func NewBackfiller(source domain.TradeHistorySource, book *PriceBook) *Backfiller {
	return &Backfiller{source: source, book: book, now: time.Now}
}

// Run accumulates the lookback window for one symbol and seeds the book.
// History pages arrive most-recent-first keyed by a seconds cursor that
// walks forward from the window start. Any fetch failure is a hard error:
// the seed is abandoned and the symbol's VWAP stays "calculating".
func (b *Backfiller) Run(ctx context.Context, symbol string) error {
	end := b.now().Unix()
	cursor := end - int64(BackfillWindow/time.Second)

	pv := decimal.Zero
	v := decimal.Zero

	for {
		page, err := b.source.TradesSince(ctx, symbol, cursor, backfillPageLimit)
		if err != nil {
			return fmt.Errorf("backfill %s since %d: %w", symbol, cursor, err)
		}
		if len(page) == 0 {
			break
		}

		for _, trade := range page {
			pv = pv.Add(trade.Price.Mul(trade.Amount))
			v = v.Add(trade.Amount)
		}

		cursor = page[0].TimestampMs / 1000
		if len(page) <= backfillFloor || end-cursor <= backfillFloor {
			break
		}
	}

	b.book.SeedAccumulators(symbol, pv, v)
	slog.Info("VWAP backfill seeded",
		slog.String("symbol", symbol),
		slog.String("pv", pv.String()),
		slog.String("v", v.String()))
	return nil
}

// RunAll backfills every symbol concurrently, each symbol sequential
// internally, and returns the per-symbol failures once all have finished.
func (b *Backfiller) RunAll(ctx context.Context, symbols []string) map[string]error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			if err := b.Run(ctx, sym); err != nil {
				slog.Error("VWAP backfill failed", slog.String("symbol", sym), slog.Any("error", err))
				mu.Lock()
				failed[sym] = err
				mu.Unlock()
			}
		}(symbol)
	}

	wg.Wait()
	return failed
}
