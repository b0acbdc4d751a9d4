package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

// Valuator computes total account value: balances from the account API
// multiplied by the PriceBook's last prices. It refreshes on demand (after
// every order event) and on a slow periodic tick. Failures never propagate
// past this boundary; the display just goes stale.
type Valuator struct {
	balances     domain.BalanceSource
	book         *PriceBook
	onUpdate     func(decimal.Decimal)
	pollInterval time.Duration

	mu     sync.RWMutex
	total  decimal.Decimal
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewValuator creates a Valuator. onUpdate is invoked with the new total
// whenever it changes.
func NewValuator(balances domain.BalanceSource, book *PriceBook, onUpdate func(decimal.Decimal)) *Valuator {
	return &Valuator{
		balances:     balances,
		book:         book,
		onUpdate:     onUpdate,
		pollInterval: 30 * time.Second,
		total:        decimal.Zero,
	}
}

// Start begins the periodic refresh loop.
func (v *Valuator) Start(ctx context.Context) {
	ctx, v.cancel = context.WithCancel(ctx)

	v.Refresh(ctx)

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Valuation polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(v.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v.Refresh(ctx)
			}
		}
	}()
}

// Refresh recomputes the total once. Balance API failures are swallowed
// here and only logged; the previous total stays visible.
func (v *Valuator) Refresh(ctx context.Context) {
	balances, err := v.balances.GetBalances(ctx)
	if err != nil {
		slog.Warn("Balance fetch failed, valuation stale", slog.Any("error", err))
		return
	}

	total := domain.Valuation(balances, v.book.LastPrice)

	v.mu.Lock()
	changed := !v.total.Equal(total)
	v.total = total
	v.mu.Unlock()

	if changed && v.onUpdate != nil {
		v.onUpdate(total)
	}
}

// Total returns the last computed total value.
func (v *Valuator) Total() decimal.Decimal {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total
}

// Stop halts the periodic loop.
func (v *Valuator) Stop() {
	if v.cancel != nil {
		v.cancel()
		v.wg.Wait()
	}
}
