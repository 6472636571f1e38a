package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fsckCmd struct{}

func (*fsckCmd) Name() string { return "fsck" }
func (*fsckCmd) Synopsis() string {
	return "checks the store file for dropped records and broken rules"
}
func (*fsckCmd) Usage() string {
	return `xchg fsck

  Loads the store file the way the server does and lists every record that
  would be dropped, then every rule the loaded store breaks (owners that are
  not registered, limits exceeded, negative balances...). Exits with a failure
  status if anything is found.

Usage Examples:
$ xchg -store exchange_db.txt fsck
`
}

func (c *fsckCmd) SetFlags(f *flag.FlagSet) {}

func (c *fsckCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, _, err := openRepository()
	if err != nil {
		return failf("%v", err)
	}
	defer repo.Close()

	problems, err := repo.Verify()
	if err != nil {
		return failf("could not check store: %v", err)
	}
	for _, p := range problems {
		fmt.Println(p)
	}
	if len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d problem(s) found\n", repo.Path(), len(problems))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "%s: ok\n", repo.Path())
	return subcommands.ExitSuccess
}
