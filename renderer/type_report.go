package renderer

import (
	"github.com/etnz/exchange"
	"github.com/shopspring/decimal"
)

// Report is the content of a store report.
// Amounts are exchange.Money so templates can pick their rendering
// (String for humans, Fixed for tables).
type Report struct {
	// Store is the path of the reported store file.
	Store string `json:"store"`
	// Users lists registered users in registration order.
	Users []ReportUser `json:"users"`
	// Accounts lists accounts in creation order.
	Accounts []ReportAccount `json:"accounts"`
	// Totals holds the sum of all balances, one per currency.
	Totals []exchange.Money `json:"totals"`
	// TotalValue is the value of every balance converted into the pivot currency.
	TotalValue exchange.Money `json:"totalValue"`
	// Rates lists the pivot rates used for TotalValue.
	Rates []ReportRate `json:"rates"`
}

// ReportUser is one registered user. Passwords are never reported.
type ReportUser struct {
	Username string `json:"username"`
	Accounts int    `json:"accounts"`
}

// ReportAccount is one account with its balances.
type ReportAccount struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Owners string         `json:"owners"`
	USD    exchange.Money `json:"usd"`
	EUR    exchange.Money `json:"eur"`
	GBP    exchange.Money `json:"gbp"`
	// Value is the account valued in the pivot currency.
	Value exchange.Money `json:"value"`
}

// ReportRate is the value of one pivot currency unit.
type ReportRate struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// NewReport builds a report from a loaded store.
func NewReport(path string, s *exchange.Store) *Report {
	r := &Report{
		Store:      path,
		Users:      make([]ReportUser, 0),
		Accounts:   make([]ReportAccount, 0),
		TotalValue: exchange.M(0, exchange.PivotCurrency),
	}

	totals := make(map[exchange.Currency]exchange.Money)
	for _, c := range exchange.Currencies() {
		totals[c] = exchange.M(0, c)
	}

	for a := range s.Accounts() {
		ra := ReportAccount{
			ID:     a.ID,
			Kind:   a.Kind.String(),
			Owners: a.OwnersCSV(),
			USD:    a.Balance(exchange.USD),
			EUR:    a.Balance(exchange.EUR),
			GBP:    a.Balance(exchange.GBP),
			Value:  exchange.M(0, exchange.PivotCurrency),
		}
		for _, c := range exchange.Currencies() {
			b := a.Balance(c)
			totals[c] = totals[c].Add(b)
			ra.Value = ra.Value.Add(exchange.Convert(b, exchange.PivotCurrency))
		}
		ra.Value = ra.Value.Round()
		r.TotalValue = r.TotalValue.Add(ra.Value)
		r.Accounts = append(r.Accounts, ra)
	}

	for u := range s.Users() {
		n := 0
		for range s.AccountsOf(u.Username) {
			n++
		}
		r.Users = append(r.Users, ReportUser{Username: u.Username, Accounts: n})
	}

	for _, c := range exchange.Currencies() {
		r.Totals = append(r.Totals, totals[c])
		if c != exchange.PivotCurrency {
			r.Rates = append(r.Rates, ReportRate{
				From: exchange.PivotCurrency.String(),
				To:   c.String(),
				Rate: exchange.Rate(exchange.PivotCurrency, c),
			})
		}
	}
	return r
}
