package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/exchange"
	"github.com/google/subcommands"
)

type ratesCmd struct {
	from string
	to   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "prints the exchange rates or converts an amount" }
func (*ratesCmd) Usage() string {
	return `xchg rates [-from <CUR> -to <CUR> <amount>]

  Without arguments, prints the rate between every pair of currencies.
  With an amount, converts it the way EXCHANGE does.

Usage Examples:
$ xchg rates
$ xchg rates -from USD -to GBP 100
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "USD", "Currency to convert from")
	f.StringVar(&c.to, "to", "EUR", "Currency to convert to")
}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch f.NArg() {
	case 0:
		for _, from := range exchange.Currencies() {
			for _, to := range exchange.Currencies() {
				if from != to {
					fmt.Printf("1 %s = %s %s\n", from, exchange.Rate(from, to).StringFixed(6), to)
				}
			}
		}
		return subcommands.ExitSuccess
	case 1:
	default:
		return subcommands.ExitUsageError
	}

	from, err := exchange.ParseCurrency(c.from)
	if err != nil {
		return failf("%v", err)
	}
	to, err := exchange.ParseCurrency(c.to)
	if err != nil {
		return failf("%v", err)
	}
	amount, err := exchange.ParseAmount(f.Arg(0))
	if err != nil {
		return failf("%v", err)
	}
	m := exchange.M(amount, from)
	fmt.Printf("%s %s = %s %s (rate=%s)\n", m.Fixed(), from, exchange.Convert(m, to).Fixed(), to, exchange.Rate(from, to).StringFixed(6))
	return subcommands.ExitSuccess
}
