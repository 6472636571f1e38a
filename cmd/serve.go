package cmd

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/server"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type serveCmd struct {
	listen  string
	metrics string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the exchange server" }
func (*serveCmd) Usage() string {
	return `xchg serve [-listen <addr>] [-metrics <addr>]

  Runs the exchange server until interrupted. Every connection gets its own
  session; all of them share the store file.

Usage Examples:
# Listen on the default address (:8080).
$ xchg serve

# Listen on port 9090 and expose Prometheus metrics.
$ xchg serve -listen :9090 -metrics :9100
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "TCP address to listen on (overrides the configuration)")
	f.StringVar(&c.metrics, "metrics", "", "HTTP address serving /metrics (overrides the configuration)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return failf("could not load configuration: %v", err)
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}
	if c.metrics != "" {
		cfg.Metrics = c.metrics
	}

	var metrics *server.Metrics
	var repoOpts []exchange.Option
	if cfg.Metrics != "" {
		metrics = server.NewMetrics()
		repoOpts = append(repoOpts, exchange.WithObserver(metrics))
	}

	repo, err := exchange.Open(cfg.Store, repoOpts...)
	if err != nil {
		return failf("%v", err)
	}
	defer repo.Close()

	if metrics != nil {
		stop := serveMetrics(cfg.Metrics, metrics)
		defer stop()
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return failf("could not listen on %q: %v", cfg.Listen, err)
	}

	log := logrus.WithField("store", repo.Path())
	d := server.NewDispatcher(repo, server.WithMetrics(metrics))
	s := server.New(d, server.WithLogger(log), server.WithServerMetrics(metrics))
	if err := s.Serve(ctx, ln); err != nil {
		return failf("%v", err)
	}
	log.Info("exchange server stopped")
	return subcommands.ExitSuccess
}

// serveMetrics exposes the metrics over HTTP and returns the function
// stopping it.
func serveMetrics(addr string, m *server.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logrus.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("metrics server failed")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
