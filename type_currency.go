package exchange

import (
	"fmt"

	"github.com/Rhymond/go-money"
)

// Currency identifies one of the currencies an account can hold.
type Currency int

// Supported currencies, in the order balances are persisted.
const (
	USD Currency = iota
	EUR
	GBP
	numCurrencies
)

var currencyCodes = [numCurrencies]string{"USD", "EUR", "GBP"}

// Currencies returns all supported currencies in persistence order.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP}
}

func (c Currency) String() string {
	if !c.valid() {
		return fmt.Sprintf("Currency(%d)", int(c))
	}
	return currencyCodes[c]
}

func (c Currency) valid() bool { return c >= 0 && c < numCurrencies }

// ParseCurrency parses an ISO code. Codes are case-sensitive.
func ParseCurrency(s string) (Currency, error) {
	for i, code := range currencyCodes {
		if code == s {
			return Currency(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// fraction returns the number of minor-unit digits of the currency.
func (c Currency) fraction() int {
	cur := money.GetCurrency(c.String())
	if cur == nil {
		return 2
	}
	return cur.Fraction
}
