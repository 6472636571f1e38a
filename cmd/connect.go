package cmd

import (
	"context"
	"flag"
	"net"
	"os"

	"github.com/etnz/exchange/client"
	"github.com/etnz/exchange/config"
	"github.com/google/subcommands"
)

type connectCmd struct{}

func (*connectCmd) Name() string     { return "connect" }
func (*connectCmd) Synopsis() string { return "open an interactive session with a server" }
func (*connectCmd) Usage() string {
	return `xchg connect [<host>[:<port>]]

  Connects to an exchange server and relays standard input to it, one line
  per prompt, printing every response. The session ends after QUIT or at the
  end of the input. The port defaults to 8080.

Usage Examples:
$ xchg connect 127.0.0.1
$ printf 'REGISTER alice a1\nLOGIN alice a1\n' | xchg connect localhost:8080
`
}

func (c *connectCmd) SetFlags(f *flag.FlagSet) {}

func (c *connectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return subcommands.ExitUsageError
	}
	addr := "localhost"
	if f.NArg() == 1 {
		addr = f.Arg(0)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		_, port, _ := net.SplitHostPort(config.DefaultListen)
		addr = net.JoinHostPort(addr, port)
	}

	cl, err := client.Dial(ctx, addr)
	if err != nil {
		return failf("%v", err)
	}
	defer cl.Close()

	if err := cl.Run(os.Stdin, os.Stdout); err != nil {
		return failf("%v", err)
	}
	return subcommands.ExitSuccess
}
