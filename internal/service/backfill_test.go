package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

type fakeHistory struct {
	mu    sync.Mutex
	calls int
	fetch func(call int, since int64, limit int) ([]domain.TradeEvent, error)
}

func (f *fakeHistory) TradesSince(_ context.Context, _ string, since int64, limit int) ([]domain.TradeEvent, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fetch(call, since, limit)
}

func (f *fakeHistory) pages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func histTrade(price, amount float64, tsSec int64) domain.TradeEvent {
	return domain.TradeEvent{
		Symbol:      "btcusd",
		Price:       decimal.NewFromFloat(price),
		Amount:      decimal.NewFromFloat(amount),
		TimestampMs: tsSec * 1000,
	}
}

func fixedNow() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func TestBackfiller_AccumulatesAcrossPages(t *testing.T) {
	end := fixedNow().Unix()

	src := &fakeHistory{fetch: func(call int, since int64, limit int) ([]domain.TradeEvent, error) {
		if limit != backfillPageLimit {
			t.Errorf("page limit = %d, want %d", limit, backfillPageLimit)
		}
		switch call {
		case 1:
			// Full-ish page, most recent first; cursor must advance to
			// the first trade's timestamp.
			page := make([]domain.TradeEvent, 0, 12)
			page = append(page, histTrade(50000, 1, end-3600))
			for i := 0; i < 11; i++ {
				page = append(page, histTrade(50000, 1, end-3700-int64(i)))
			}
			return page, nil
		case 2:
			if since != end-3600 {
				t.Errorf("second page cursor = %d, want %d", since, end-3600)
			}
			// Short page ends the loop.
			return []domain.TradeEvent{histTrade(52000, 2, end-10)}, nil
		default:
			t.Fatalf("unexpected page fetch #%d", call)
			return nil, nil
		}
	}}

	book := NewPriceBook(testPrecisions(), nil)
	bf := NewBackfiller(src, book)
	bf.now = fixedNow

	if err := bf.Run(context.Background(), "btcusd"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pv, v := book.Accumulators("btcusd")
	// 12 trades of 1 @ 50000 plus 2 @ 52000.
	if !v.Equal(decimal.NewFromInt(14)) {
		t.Errorf("v = %v, want 14", v)
	}
	if !pv.Equal(decimal.NewFromInt(12*50000 + 2*52000)) {
		t.Errorf("pv = %v, want %d", pv, 12*50000+2*52000)
	}
}

func TestBackfiller_TerminatesOnSmallPage(t *testing.T) {
	src := &fakeHistory{fetch: func(call int, since int64, limit int) ([]domain.TradeEvent, error) {
		// Exactly the floor, forever. Must stop after the first page.
		page := make([]domain.TradeEvent, backfillFloor)
		for i := range page {
			page[i] = histTrade(50000, 1, since+1)
		}
		return page, nil
	}}

	book := NewPriceBook(testPrecisions(), nil)
	bf := NewBackfiller(src, book)
	bf.now = fixedNow

	if err := bf.Run(context.Background(), "btcusd"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if src.pages() != 1 {
		t.Errorf("fetched %d pages, want 1", src.pages())
	}
}

func TestBackfiller_TerminatesOnCursorGap(t *testing.T) {
	end := fixedNow().Unix()

	// Every page is comfortably above the floor so only the cursor-to-end
	// gap can stop the loop.
	src := &fakeHistory{fetch: func(call int, since int64, limit int) ([]domain.TradeEvent, error) {
		newest := end - 86400 + int64(call)*43200 // halves the window each call
		if newest > end-5 {
			newest = end - 5
		}
		page := make([]domain.TradeEvent, 50)
		for i := range page {
			page[i] = histTrade(50000, 1, newest-int64(i))
		}
		return page, nil
	}}

	book := NewPriceBook(testPrecisions(), nil)
	bf := NewBackfiller(src, book)
	bf.now = fixedNow

	done := make(chan error, 1)
	go func() { done <- bf.Run(context.Background(), "btcusd") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("backfill did not terminate on cursor gap")
	}
	if src.pages() > 4 {
		t.Errorf("fetched %d pages, expected the gap guard to stop by page 3", src.pages())
	}
}

func TestBackfiller_HardErrorLeavesBookUnseeded(t *testing.T) {
	src := &fakeHistory{fetch: func(call int, since int64, limit int) ([]domain.TradeEvent, error) {
		return nil, domain.NewFatalNetworkError("fetch", domain.ErrBadResponse)
	}}

	book := NewPriceBook(testPrecisions(), nil)
	bf := NewBackfiller(src, book)
	bf.now = fixedNow

	err := bf.Run(context.Background(), "btcusd")
	if err == nil {
		t.Fatal("Expected hard error to propagate")
	}
	if !errors.Is(err, domain.ErrBadResponse) {
		t.Errorf("error chain should carry ErrBadResponse, got %v", err)
	}

	// Accumulators untouched: VWAP stays "calculating".
	if _, err := book.Vwap("btcusd"); !errors.Is(err, domain.ErrNoPrice) {
		t.Errorf("Vwap error = %v, want ErrNoPrice", err)
	}
}

func TestBackfiller_RunAllCollectsFailures(t *testing.T) {
	src := &fakeHistory{fetch: func(call int, since int64, limit int) ([]domain.TradeEvent, error) {
		return nil, domain.ErrBadResponse
	}}

	book := NewPriceBook(testPrecisions(), nil)
	bf := NewBackfiller(src, book)
	bf.now = fixedNow

	failed := bf.RunAll(context.Background(), []string{"btcusd", "ethusd"})
	if len(failed) != 2 {
		t.Errorf("failures = %d, want 2", len(failed))
	}
}
