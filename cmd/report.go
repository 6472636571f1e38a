package cmd

import (
	"context"
	"flag"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	skipUsers bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "prints a summary of the store" }
func (*reportCmd) Usage() string {
	return `xchg report [-skip-users]

  Prints the totals per currency, every account with its balances and value
  in EUR, and every user with the number of accounts they own.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.skipUsers, "skip-users", false, "Do not list users")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, _, err := openRepository()
	if err != nil {
		return failf("%v", err)
	}
	defer repo.Close()

	var report *renderer.Report
	err = repo.WithReadLock(func(s *exchange.Store) error {
		report = renderer.NewReport(repo.Path(), s)
		return nil
	})
	if err != nil {
		return failf("could not load store: %v", err)
	}
	printMarkdown(renderer.RenderReport(report, renderer.ReportOptions{SkipUsers: c.skipUsers}))
	return subcommands.ExitSuccess
}
