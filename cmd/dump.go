package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/exchange"
	"github.com/google/subcommands"
)

type dumpCmd struct {
	query string
}

func (*dumpCmd) Name() string     { return "dump" }
func (*dumpCmd) Synopsis() string { return "prints the store as JSON" }
func (*dumpCmd) Usage() string {
	return `xchg dump [-q <jsonpath>]

  Prints users and accounts as JSON. Passwords are never printed.
  With -q, only the result of the JSONPath query is printed.

Usage Examples:
$ xchg dump -q '$.accounts[*].id'
$ xchg dump -q '$.accounts[?(@.kind=="JOINT")].owners'
`
}

func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "JSONPath query applied to the dump")
}

func (c *dumpCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, _, err := openRepository()
	if err != nil {
		return failf("%v", err)
	}
	defer repo.Close()

	var data []byte
	err = repo.WithReadLock(func(s *exchange.Store) (err error) {
		data, err = json.Marshal(s)
		return err
	})
	if err != nil {
		return failf("could not dump store: %v", err)
	}
	if err := dump(os.Stdout, data, c.query); err != nil {
		return failf("%v", err)
	}
	return subcommands.ExitSuccess
}

// dump writes the indented JSON data, or the result of query on it.
func dump(w io.Writer, data []byte, query string) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid dump: %w", err)
	}
	if query != "" {
		res, err := jsonpath.Get(query, v)
		if err != nil {
			return fmt.Errorf("error evaluating %q: %w", query, err)
		}
		v = res
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
