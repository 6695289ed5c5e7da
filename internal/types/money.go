// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// Money holds an amount in the currency's minor unit (paise, cents).
type Money struct {
	Amount   int64
	Currency string
	Symbol   string
}

// MoneyFromMajor converts a major-unit float (e.g. 1234.56) to Money,
// rounding half away from zero.
func MoneyFromMajor(v float64, currency, symbol string) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency, Symbol: symbol}
}

// Major returns the amount in major units.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

// String renders "<symbol><amount>", e.g. "₹1234.50".
func (m Money) String() string {
	sign := ""
	amt := m.Amount
	if amt < 0 {
		sign = "-"
		amt = -amt
	}
	prefix := m.Symbol
	if prefix == "" {
		prefix = m.Currency + " "
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, prefix, amt/100, amt%100)
}
