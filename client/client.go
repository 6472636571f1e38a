// Package client is the interactive client of the exchange server.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/etnz/exchange/protocol"
)

// Client is a connection to an exchange server.
type Client struct {
	conn io.ReadWriteCloser
	r    *bufio.Reader
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %q: %w", addr, err)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn io.ReadWriteCloser) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// Greeting reads the welcome block sent on connection.
func (c *Client) Greeting() ([]string, error) { return c.readResponse() }

// Command sends one command line and returns the response lines, sentinel
// excluded. The pending prompt must have been consumed with Prompt.
func (c *Client) Command(line string) ([]string, error) {
	if err := c.send(line); err != nil {
		return nil, err
	}
	return c.readResponse()
}

// Prompt waits for the next prompt line. It returns io.EOF if the server
// closed the connection instead.
func (c *Client) Prompt() error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if line != protocol.Prompt {
		return fmt.Errorf("expected prompt, got %q", line)
	}
	return nil
}

// Run relays in to the server one line per prompt and prints every response
// to out. It stops once QUIT has been answered. When in is exhausted it
// sends QUIT itself.
func (c *Client) Run(in io.Reader, out io.Writer) error {
	greeting, err := c.Greeting()
	if err != nil {
		return err
	}
	printLines(out, greeting)

	input := bufio.NewScanner(in)
	input.Buffer(make([]byte, 0, 4096), 1<<20)
	for {
		if err := c.Prompt(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fmt.Fprint(out, protocol.Prompt+" ")

		line := "QUIT"
		if input.Scan() {
			line = strings.TrimRight(input.Text(), "\r")
		} else {
			if err := input.Err(); err != nil {
				return fmt.Errorf("could not read input: %w", err)
			}
			fmt.Fprintln(out, line)
		}

		// Blank lines are not answered, the server prompts again.
		if strings.TrimSpace(line) == "" && len(line) <= protocol.MaxLineLength {
			if err := c.send(line); err != nil {
				return err
			}
			continue
		}

		resp, err := c.Command(line)
		if err != nil {
			return err
		}
		printLines(out, resp)
		if isQuit(line) {
			return nil
		}
	}
}

func isQuit(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == "QUIT"
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func (c *Client) send(line string) error {
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return fmt.Errorf("could not send command: %w", err)
	}
	return nil
}

// readResponse reads lines up to the sentinel.
func (c *Client) readResponse() ([]string, error) {
	var lines []string
	for {
		line, err := c.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, io.ErrUnexpectedEOF
			}
			return lines, err
		}
		if line == protocol.Sentinel {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("could not read from server: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
