package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/protocol"
	"github.com/sirupsen/logrus"
)

// greeting is sent once when a connection opens.
var greeting = protocol.OK("Currency Exchange Server", "Type HELP for commands")

// Handle runs the protocol on one connection: greeting, then
// prompt, read, dispatch and respond until QUIT or end of input.
//
// It returns nil when the client quit or closed the connection, and an error
// when the connection had to be aborted.
func Handle(r io.Reader, w io.Writer, d *Dispatcher, log logrus.FieldLogger) error {
	f := protocol.NewFramer(r, w)
	var sess exchange.Session

	if err := f.WriteResponse(greeting); err != nil {
		return fmt.Errorf("could not greet: %w", err)
	}
	for {
		if err := f.WritePrompt(); err != nil {
			return fmt.Errorf("could not prompt: %w", err)
		}
		line, err := f.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, protocol.ErrLineTooLong):
			if err := f.WriteResponse(protocol.Err("Line too long")); err != nil {
				return fmt.Errorf("could not respond: %w", err)
			}
			continue
		case err != nil:
			return fmt.Errorf("could not read: %w", err)
		}

		req, ok := protocol.ParseRequest(line)
		if !ok {
			continue
		}
		resp, quit, err := d.Dispatch(&sess, req)
		if err != nil {
			return fmt.Errorf("%s failed: %w", req.Verb, err)
		}
		if user, ok := sess.User(); ok {
			log = log.WithField("user", user)
		}
		log.WithField("verb", req.Verb).Debug(resp.Lines()[0])
		if err := f.WriteResponse(resp); err != nil {
			return fmt.Errorf("could not respond: %w", err)
		}
		if quit {
			return nil
		}
	}
}
