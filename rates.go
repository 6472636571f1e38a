package exchange

import "github.com/shopspring/decimal"

// PivotCurrency is the reference currency every rate is expressed against.
const PivotCurrency = EUR

// unitsPerPivot is how many units of each currency one EUR buys.
// 1 EUR = 1.10 USD, 1 EUR = 0.85 GBP.
var unitsPerPivot = [numCurrencies]decimal.Decimal{
	USD: decimal.RequireFromString("1.10"),
	EUR: decimal.NewFromInt(1),
	GBP: decimal.RequireFromString("0.85"),
}

// Rate returns how many units of 'to' one unit of 'from' is worth.
//
// The amount is first brought back to the pivot and then expressed in the
// target currency, so a round trip A->B->A is not guaranteed to give back the
// exact original amount.
func Rate(from, to Currency) decimal.Decimal {
	if from == to {
		return decimal.NewFromInt(1)
	}
	inPivot := decimal.NewFromInt(1).Div(unitsPerPivot[from])
	return inPivot.Mul(unitsPerPivot[to])
}

// Convert converts m into the currency 'to' at the fixed rate. The result is
// not rounded.
func Convert(m Money, to Currency) Money {
	return Money{value: m.value.Mul(Rate(m.cur, to)), cur: to}
}
