package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/exchange"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "rewrites the store file into its canonical form"
}
func (*fmtCmd) Usage() string {
	return `xchg fmt

  Loads the store file and writes it back: users first, then accounts, with
  two decimal balances. Records the server would drop are removed. Run
  'xchg fsck' first to see them.

Usage Examples:
$ xchg fmt
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, _, err := openRepository()
	if err != nil {
		return failf("%v", err)
	}
	defer repo.Close()

	var users, accounts int
	err = repo.WithWriteLock(func(s *exchange.Store) error {
		users, accounts = s.Len()
		return nil
	})
	if err != nil {
		return failf("could not format store: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Store %q formatted: %d users, %d accounts.\n", repo.Path(), users, accounts)
	return subcommands.ExitSuccess
}
