package client_test

import (
	"bytes"
	"io"
	"math/rand/v2"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/client"
	"github.com/etnz/exchange/server"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect returns a client talking to an in-memory server.
func connect(t *testing.T) *client.Client {
	t.Helper()
	repo, err := exchange.Open(filepath.Join(t.TempDir(), "exchange_db.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	d := server.NewDispatcher(repo, server.WithRand(rand.New(rand.NewPCG(1, 2))))

	srv, conn := net.Pipe()
	done := make(chan error, 1)
	go func() {
		log, _ := test.NewNullLogger()
		done <- server.Handle(srv, srv, d, log)
		srv.Close()
	}()
	t.Cleanup(func() {
		conn.Close()
		assert.NoError(t, <-done)
	})
	return client.New(conn)
}

const greeting = "OK Currency Exchange Server\nType HELP for commands\n"

func TestRun(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "explicit QUIT",
			input: "RATES\nQUIT\nRATES\n",
			want: greeting +
				"READY> OK Rates (approx, fixed):\n  1 EUR = 1.10 USD\n  1 EUR = 0.85 GBP\n" +
				"READY> OK Bye\n",
		},
		{
			name:  "end of input sends QUIT",
			input: "REGISTER alice pw\n",
			want: greeting +
				"READY> OK Registered\n" +
				"READY> QUIT\nOK Bye\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  greeting + "READY> QUIT\nOK Bye\n",
		},
		{
			name:  "blank lines are prompted again",
			input: "\n  \nLOGIN alice pw\r\n",
			want: greeting +
				"READY> READY> READY> ERR No such user\n" +
				"READY> QUIT\nOK Bye\n",
		},
		{
			name:  "too long blank line is answered",
			input: strings.Repeat(" ", 600) + "\nQUIT\n",
			want: greeting +
				"READY> ERR Line too long\n" +
				"READY> OK Bye\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cl := connect(t)
			var out bytes.Buffer

			err := cl.Run(strings.NewReader(tc.input), &out)

			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestCommand(t *testing.T) {
	cl := connect(t)

	greet, err := cl.Greeting()
	require.NoError(t, err)
	assert.Equal(t, []string{"OK Currency Exchange Server", "Type HELP for commands"}, greet)

	require.NoError(t, cl.Prompt())
	resp, err := cl.Command("HELP")
	require.NoError(t, err)
	require.NotEmpty(t, resp)
	assert.Equal(t, "OK Commands:", resp[0])
	assert.Contains(t, resp, "  EXCHANGE <accid> <FROMCUR> <TOCUR> <amount>")

	require.NoError(t, cl.Prompt())
	resp, err = cl.Command("QUIT")
	require.NoError(t, err)
	assert.Equal(t, []string{"OK Bye"}, resp)

	assert.ErrorIs(t, cl.Prompt(), io.EOF)
}
