// Command xchg runs the exchange server and its tools.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/cmd"
	"github.com/etnz/exchange/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Completion mode: when COMP_LINE is set, this prints completions and exits.
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	var currencies predict.Set
	for _, c := range exchange.Currencies() {
		currencies = append(currencies, c.String())
	}
	topics, _ := docs.GetAllTopics()

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"store":  predict.Files("*.txt"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"serve": {
				Flags: map[string]complete.Predictor{
					"listen":  predict.Something,
					"metrics": predict.Something,
				},
			},
			"connect": {Args: predict.Something},
			"fsck":    {},
			"fmt":     {},
			"report": {
				Flags: map[string]complete.Predictor{"skip-users": predict.Nothing},
			},
			"dump": {
				Flags: map[string]complete.Predictor{"q": predict.Something},
			},
			"rates": {
				Flags: map[string]complete.Predictor{
					"from": currencies,
					"to":   currencies,
				},
			},
			"topic": {
				Flags: map[string]complete.Predictor{"list": predict.Nothing},
				Args:  predict.Set(append(topics, docs.Index)),
			},
			"help": {},
		},
	}
}
