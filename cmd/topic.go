package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/exchange/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "shows the embedded documentation" }
func (*topicCmd) Usage() string {
	return `xchg topic [-list] [<topic>...]

  Shows documentation topics, the index when no topic is given.
  The topic '*' shows all of them.

Usage Examples:
$ xchg topic protocol
$ xchg topic -list
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "Print the topic names only")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		if f.NArg() > 0 {
			return subcommands.ExitUsageError
		}
		topics, err := docs.GetAllTopics()
		if err != nil {
			return failf("could not list topics: %v", err)
		}
		for _, t := range topics {
			fmt.Println(t)
		}
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return failf("%v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
