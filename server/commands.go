package server

import (
	"fmt"

	"github.com/etnz/exchange"
	"github.com/etnz/exchange/protocol"
	"github.com/shopspring/decimal"
)

func (d *Dispatcher) help(*exchange.Session, []string) (protocol.Response, error) {
	lines := make([]string, 0, len(verbs))
	for _, v := range verbs {
		lines = append(lines, "  "+commands[v].usage)
	}
	return protocol.OK("Commands:", lines...), nil
}

func (d *Dispatcher) rates(*exchange.Session, []string) (protocol.Response, error) {
	var lines []string
	for _, c := range exchange.Currencies() {
		if c == exchange.PivotCurrency {
			continue
		}
		lines = append(lines, fmt.Sprintf("  1 %s = %s %s", exchange.PivotCurrency, exchange.Rate(exchange.PivotCurrency, c).StringFixed(2), c))
	}
	return protocol.OK("Rates (approx, fixed):", lines...), nil
}

func (d *Dispatcher) quit(*exchange.Session, []string) (protocol.Response, error) {
	return protocol.OK("Bye"), nil
}

func (d *Dispatcher) register(_ *exchange.Session, args []string) (protocol.Response, error) {
	username, password := args[0], args[1]
	if err := exchange.ValidateCredentials(username, password); err != nil {
		return protocol.Response{}, err
	}
	err := d.repo.WithWriteLock(func(s *exchange.Store) error {
		return s.Register(username, password)
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK("Registered"), nil
}

func (d *Dispatcher) login(sess *exchange.Session, args []string) (protocol.Response, error) {
	username, password := args[0], args[1]
	err := d.repo.WithReadLock(func(s *exchange.Store) error {
		return s.Authenticate(username, password)
	})
	if err != nil {
		return protocol.Response{}, err
	}
	sess.Login(username)
	return protocol.OK("Logged in"), nil
}

func (d *Dispatcher) createAccount(sess *exchange.Session, args []string) (protocol.Response, error) {
	creator, _ := sess.User()
	kind, err := exchange.ParseAccountKind(args[0])
	if err != nil {
		return protocol.Response{}, err
	}
	owners, err := exchange.ParseOwners(args[1])
	if err != nil {
		return protocol.Response{}, err
	}

	var id string
	err = d.repo.WithWriteLock(func(s *exchange.Store) error {
		a, err := s.CreateAccount(creator, kind, owners, d.rnd)
		if err != nil {
			return err
		}
		id = a.ID
		return nil
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK("Created " + id), nil
}

func (d *Dispatcher) listAccounts(sess *exchange.Session, _ []string) (protocol.Response, error) {
	user, _ := sess.User()
	var lines []string
	err := d.repo.WithReadLock(func(s *exchange.Store) error {
		for a := range s.AccountsOf(user) {
			lines = append(lines, fmt.Sprintf("  %s  %s  owners=%s", a.ID, a.Kind, a.OwnersCSV()))
		}
		return nil
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK("Accounts:", lines...), nil
}

func (d *Dispatcher) balances(sess *exchange.Session, args []string) (protocol.Response, error) {
	user, _ := sess.User()
	id := args[0]
	var title string
	err := d.repo.WithReadLock(func(s *exchange.Store) error {
		a, err := s.OwnedAccount(id, user)
		if err != nil {
			return err
		}
		title = fmt.Sprintf("%s balances: USD=%s EUR=%s GBP=%s", a.ID,
			a.Balance(exchange.USD).Fixed(),
			a.Balance(exchange.EUR).Fixed(),
			a.Balance(exchange.GBP).Fixed())
		return nil
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(title), nil
}

func (d *Dispatcher) deposit(sess *exchange.Session, args []string) (protocol.Response, error) {
	return d.move(sess, args, (*exchange.Account).Deposit)
}

func (d *Dispatcher) withdraw(sess *exchange.Session, args []string) (protocol.Response, error) {
	return d.move(sess, args, (*exchange.Account).Withdraw)
}

// move applies a single currency balance change to an owned account.
func (d *Dispatcher) move(sess *exchange.Session, args []string, apply func(*exchange.Account, exchange.Money) error) (protocol.Response, error) {
	user, _ := sess.User()
	id := args[0]
	amount, err := exchange.ParseAmount(args[2])
	if err != nil {
		return protocol.Response{}, err
	}
	cur, err := exchange.ParseCurrency(args[1])
	if err != nil {
		return protocol.Response{}, err
	}
	m := exchange.M(amount, cur)

	err = d.repo.WithWriteLock(func(s *exchange.Store) error {
		a, err := s.OwnedAccount(id, user)
		if err != nil {
			return err
		}
		return apply(a, m)
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK("Done"), nil
}

func (d *Dispatcher) exchange(sess *exchange.Session, args []string) (protocol.Response, error) {
	user, _ := sess.User()
	id := args[0]
	amount, err := exchange.ParseAmount(args[3])
	if err != nil {
		return protocol.Response{}, err
	}
	from, err := exchange.ParseCurrency(args[1])
	if err != nil {
		return protocol.Response{}, err
	}
	to, err := exchange.ParseCurrency(args[2])
	if err != nil {
		return protocol.Response{}, err
	}
	if from == to {
		return protocol.Response{}, exchange.ErrSameCurrency
	}
	debit := exchange.M(amount, from)

	var credit exchange.Money
	var rate decimal.Decimal
	err = d.repo.WithWriteLock(func(s *exchange.Store) error {
		a, err := s.OwnedAccount(id, user)
		if err != nil {
			return err
		}
		credit, rate, err = a.Exchange(debit, to)
		return err
	})
	if err != nil {
		return protocol.Response{}, err
	}
	return protocol.OK(fmt.Sprintf("Exchanged %s %s -> %s %s (rate=%s)",
		debit.Fixed(), from, credit.Fixed(), to, rate.StringFixed(6))), nil
}
