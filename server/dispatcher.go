package server

import (
	"errors"
	"math/rand/v2"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/protocol"
)

// Dispatcher turns protocol requests into store operations.
//
// It is shared by all connections; per-connection state lives in the
// exchange.Session passed to Dispatch.
type Dispatcher struct {
	repo    *exchange.Repository
	rnd     *rand.Rand // only used under the exclusive lock
	metrics *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRand sets the source of account ids.
func WithRand(r *rand.Rand) DispatcherOption {
	return func(d *Dispatcher) { d.rnd = r }
}

// WithMetrics records command outcomes in m.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher returns a dispatcher operating on repo.
func NewDispatcher(repo *exchange.Repository, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		repo: repo,
		rnd:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// command describes one protocol verb.
type command struct {
	usage string // shown by HELP and in usage errors
	args  int    // exact number of arguments
	auth  bool   // requires a logged in session
	quit  bool   // closes the connection once answered
	run   func(d *Dispatcher, sess *exchange.Session, args []string) (protocol.Response, error)
}

// verbs lists the commands in HELP order.
var verbs = []string{
	"REGISTER", "LOGIN", "RATES", "CREATE_ACCOUNT", "LIST_ACCOUNTS",
	"BALANCES", "DEPOSIT", "WITHDRAW", "EXCHANGE", "QUIT",
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"HELP":           {usage: "HELP", run: (*Dispatcher).help},
		"RATES":          {usage: "RATES", run: (*Dispatcher).rates},
		"REGISTER":       {usage: "REGISTER <user> <pass>", args: 2, run: (*Dispatcher).register},
		"LOGIN":          {usage: "LOGIN <user> <pass>", args: 2, run: (*Dispatcher).login},
		"CREATE_ACCOUNT": {usage: "CREATE_ACCOUNT IND|JOINT <ownersCSV>", args: 2, auth: true, run: (*Dispatcher).createAccount},
		"LIST_ACCOUNTS":  {usage: "LIST_ACCOUNTS", auth: true, run: (*Dispatcher).listAccounts},
		"BALANCES":       {usage: "BALANCES <accid>", args: 1, auth: true, run: (*Dispatcher).balances},
		"DEPOSIT":        {usage: "DEPOSIT <accid> <CUR> <amount>", args: 3, auth: true, run: (*Dispatcher).deposit},
		"WITHDRAW":       {usage: "WITHDRAW <accid> <CUR> <amount>", args: 3, auth: true, run: (*Dispatcher).withdraw},
		"EXCHANGE":       {usage: "EXCHANGE <accid> <FROMCUR> <TOCUR> <amount>", args: 4, auth: true, run: (*Dispatcher).exchange},
		"QUIT":           {usage: "QUIT", quit: true, run: (*Dispatcher).quit},
	}
}

// Dispatch executes one request. Rejected commands are answered with an ERR
// response and a nil error. A non-nil error is fatal for the connection: no
// response must be written and the connection must be dropped.
func (d *Dispatcher) Dispatch(sess *exchange.Session, req protocol.Request) (resp protocol.Response, quit bool, err error) {
	cmd, ok := commands[req.Verb]
	if !ok {
		d.metrics.command("unknown", "err")
		return protocol.Err("Unknown command (try HELP)"), false, nil
	}

	resp, err = d.run(cmd, sess, req.Args)
	switch {
	case err != nil:
		d.metrics.command(req.Verb, "fatal")
		return protocol.Response{}, false, err
	case resp.IsOK():
		d.metrics.command(req.Verb, "ok")
	default:
		d.metrics.command(req.Verb, "err")
	}
	return resp, cmd.quit && resp.IsOK(), nil
}

// run applies the fixed validation order: authentication, then argument
// count, then the command itself. An amount that is not a number is a usage
// error too.
func (d *Dispatcher) run(cmd command, sess *exchange.Session, args []string) (protocol.Response, error) {
	if cmd.auth {
		if _, err := sess.Require(); err != nil {
			return reject(err)
		}
	}
	if len(args) != cmd.args {
		return usage(cmd), nil
	}
	resp, err := cmd.run(d, sess, args)
	if errors.Is(err, exchange.ErrInvalidAmount) {
		return usage(cmd), nil
	}
	if err != nil {
		return reject(err)
	}
	return resp, nil
}

func usage(cmd command) protocol.Response {
	return protocol.Err("Usage: " + cmd.usage)
}

// rejections maps domain errors to their protocol message.
var rejections = []struct {
	err error
	msg string
}{
	{exchange.ErrNotLoggedIn, "Please LOGIN first"},
	{exchange.ErrUserExists, "User already exists"},
	{exchange.ErrUserLimit, "User limit reached"},
	{exchange.ErrInvalidName, "Username must not contain ','"},
	{exchange.ErrNameTooLong, "Username too long (max 31)"},
	{exchange.ErrInvalidPassword, "Invalid password"},
	{exchange.ErrPasswordTooLong, "Password too long (max 31)"},
	{exchange.ErrNoSuchUser, "No such user"},
	{exchange.ErrWrongPassword, "Wrong password"},
	{exchange.ErrInvalidKind, "type must be IND or JOINT"},
	{exchange.ErrEmptyOwners, "ownersCSV is empty"},
	{exchange.ErrMalformedOwners, "Malformed ownersCSV"},
	{exchange.ErrDuplicateOwner, "Duplicate owner in ownersCSV"},
	{exchange.ErrTooManyOwners, "Too many owners (max 5)"},
	{exchange.ErrUnknownOwner, "One or more owners do not exist (REGISTER them first)"},
	{exchange.ErrIndividualOwners, "IND account must have exactly 1 owner"},
	{exchange.ErrIndividualOwner, "IND account owner must be the logged-in user"},
	{exchange.ErrJointCreator, "JOINT account must include logged-in user among owners"},
	{exchange.ErrAccountLimit, "Account limit reached"},
	{exchange.ErrAccountIDSpace, "Could not generate account id"},
	{exchange.ErrNoSuchAccount, "No such account"},
	{exchange.ErrNotOwner, "Not an owner"},
	{exchange.ErrUnknownCurrency, "Unknown currency (USD/EUR/GBP)"},
	{exchange.ErrSameCurrency, "FROMCUR and TOCUR must differ"},
	{exchange.ErrNonPositive, "amount must be > 0"},
	{exchange.ErrAmountPrecision, "amount must have at most 2 decimals"},
	{exchange.ErrAmountTooLarge, "amount too large (max 15 digits)"},
	{exchange.ErrBalanceLimit, "Balance limit reached"},
	{exchange.ErrInsufficientFunds, "Insufficient funds"},
}

// reject turns a domain error into an ERR response. Any other error is
// returned unchanged as fatal.
func reject(err error) (protocol.Response, error) {
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return protocol.Err(r.msg), nil
		}
	}
	return protocol.Response{}, err
}
