// Package cmd implements the xchg CLI application: the exchange server, its
// client and the tools working on the store file.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/exchange"
	"github.com/etnz/exchange/config"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")
	c.Register(&connectCmd{}, "server")

	c.Register(&fsckCmd{}, "store")
	c.Register(&fmtCmd{}, "store")
	c.Register(&reportCmd{}, "store")
	c.Register(&dumpCmd{}, "store")

	c.Register(&ratesCmd{}, "")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "xchg.yaml", "Path to the optional YAML configuration file")
var storeFile = flag.String("store", "", "Path to the store file (overrides the configuration)")
var verbose = flag.Bool("v", false, "Log debug messages")

// loadConfig loads the configuration, applies the global flags and sets up
// logging accordingly.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return cfg, err
	}
	if *storeFile != "" {
		cfg.Store = *storeFile
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	if cfg.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return cfg, nil
}

// openRepository loads the configuration and opens the store file.
func openRepository(opts ...exchange.Option) (*exchange.Repository, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	repo, err := exchange.Open(cfg.Store, opts...)
	if err != nil {
		return nil, cfg, err
	}
	return repo, cfg, nil
}

// failf prints an error and returns the failure status.
func failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// printMarkdown renders markdown for the terminal, or prints it as is when
// rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
