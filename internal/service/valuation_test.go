package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

type fakeBalances struct {
	balances []domain.Balance
	err      error
}

func (f *fakeBalances) GetBalances(context.Context) ([]domain.Balance, error) {
	return f.balances, f.err
}

func TestValuator_Refresh(t *testing.T) {
	book := NewPriceBook(testPrecisions(), nil)
	book.SeedLastPrice("btcusd", decimal.NewFromInt(50000))
	book.SeedLastPrice("ethusd", decimal.NewFromInt(3000))

	src := &fakeBalances{balances: []domain.Balance{
		{Currency: "BTC", Amount: decimal.NewFromInt(1)},
		{Currency: "ETH", Amount: decimal.NewFromInt(10)},
		{Currency: "USD", Amount: decimal.NewFromInt(250)},
	}}

	var pushed []decimal.Decimal
	v := NewValuator(src, book, func(total decimal.Decimal) {
		pushed = append(pushed, total)
	})

	v.Refresh(context.Background())

	want := decimal.NewFromInt(50000 + 30000 + 250)
	if !v.Total().Equal(want) {
		t.Errorf("Total = %v, want %v", v.Total(), want)
	}
	if len(pushed) != 1 || !pushed[0].Equal(want) {
		t.Errorf("pushed = %v, want one update of %v", pushed, want)
	}

	// Unchanged total should not push again.
	v.Refresh(context.Background())
	if len(pushed) != 1 {
		t.Errorf("Expected no second push, got %d", len(pushed))
	}
}

func TestValuator_BalanceFailureSwallowed(t *testing.T) {
	book := NewPriceBook(testPrecisions(), nil)
	book.SeedLastPrice("btcusd", decimal.NewFromInt(50000))

	src := &fakeBalances{balances: []domain.Balance{
		{Currency: "BTC", Amount: decimal.NewFromInt(1)},
	}}

	v := NewValuator(src, book, nil)
	v.Refresh(context.Background())
	before := v.Total()

	src.err = errors.New("balance API down")
	v.Refresh(context.Background()) // must not panic or reset

	if !v.Total().Equal(before) {
		t.Errorf("Total changed on failed refresh: %v -> %v", before, v.Total())
	}
}
