// Package server serves the exchange line protocol over TCP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server accepts connections and runs one handler per connection, all
// sharing the same Dispatcher.
type Server struct {
	dispatcher *Dispatcher
	log        logrus.FieldLogger
	metrics    *Metrics

	mu    sync.Mutex
	conns map[string]net.Conn
	wg    sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. The default is the logrus standard
// logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithServerMetrics counts connections in m.
func WithServerMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New returns a server dispatching commands with d.
func New(d *Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		log:        logrus.StandardLogger(),
		conns:      make(map[string]net.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections on ln until ctx is done. It then closes the
// listener and every open connection, waits for their handlers and returns
// nil. Any other accept failure that is not temporary is returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.shutdown()

	s.log.WithField("addr", ln.Addr().String()).Info("exchange server listening")
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				delay = backoff(delay)
				s.log.WithError(err).Warnf("accept failed, retrying in %v", delay)
				time.Sleep(delay)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		delay = 0

		id := uuid.NewString()
		s.track(id, conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(id)
			s.handle(id, conn)
		}()
	}
}

func backoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, time.Second)
}

func (s *Server) track(id string, conn net.Conn) {
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
	s.metrics.connOpened()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	conn, ok := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
	s.metrics.connClosed()
}

// shutdown closes every live connection and waits for their handlers.
func (s *Server) shutdown() {
	s.mu.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// handle runs the connection until it ends.
func (s *Server) handle(id string, conn net.Conn) {
	log := s.log.WithFields(logrus.Fields{
		"conn":   id,
		"remote": conn.RemoteAddr().String(),
	})
	log.Info("connection opened")
	err := Handle(conn, conn, s.dispatcher, log)
	if err != nil {
		log.WithError(err).Error("connection aborted")
		return
	}
	log.Info("connection closed")
}
