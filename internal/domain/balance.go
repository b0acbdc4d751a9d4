package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Balance is a single currency balance returned by the account API.
type Balance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Valuation converts a set of balances into a total USD value using the
// supplied last-price lookup (symbol -> price). USD contributes at face
// value; other currencies are valued against their USD pair and contribute
// nothing when no price has been observed yet.
func Valuation(balances []Balance, lastPrice func(symbol string) *decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if b.Currency == "USD" {
			total = total.Add(b.Amount)
			continue
		}
		if p := lastPrice(strings.ToLower(b.Currency) + "usd"); p != nil {
			total = total.Add(b.Amount.Mul(*p))
		}
	}
	return total
}
