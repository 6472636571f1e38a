package exchange

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Store limits.
const (
	MaxUsers      = 200
	MaxAccounts   = 500
	MaxOwners     = 5
	MaxNameLength = 31

	// Account ids are drawn from ACC1000..ACC9999.
	accountIDPrefix   = "ACC"
	accountIDMin      = 1000
	accountIDSpan     = 9000
	accountIDAttempts = 10000
)

// AccountKind tells individual accounts from joint ones.
type AccountKind int

const (
	Individual AccountKind = iota
	Joint
)

func (k AccountKind) String() string {
	switch k {
	case Individual:
		return "IND"
	case Joint:
		return "JOINT"
	default:
		return "unknown"
	}
}

// ParseAccountKind parses the wire name of an account kind ("IND" or "JOINT").
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "IND":
		return Individual, nil
	case "JOINT":
		return Joint, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// User is a registered user. Users are immutable once registered.
type User struct {
	Username string
	Password string
}

// Account holds balances in every supported currency for its owners.
type Account struct {
	ID       string
	Kind     AccountKind
	Owners   []string
	balances [numCurrencies]decimal.Decimal
}

// IsOwner reports whether username is listed as an owner of the account.
func (a *Account) IsOwner(username string) bool {
	return slices.Contains(a.Owners, username)
}

// Balance returns the balance held in currency c.
func (a *Account) Balance(c Currency) Money {
	return Money{value: a.balances[c], cur: c}
}

// Deposit credits the account. The amount must be positive.
func (a *Account) Deposit(m Money) error {
	if !m.IsPositive() {
		return ErrNonPositive
	}
	return a.credit(m)
}

// credit adds m unless the balance would outgrow MaxAmountDigits.
func (a *Account) credit(m Money) error {
	sum := a.balances[m.cur].Add(m.value)
	if sum.GreaterThanOrEqual(maxBalance) {
		return ErrBalanceLimit
	}
	a.balances[m.cur] = sum
	return nil
}

// Withdraw debits the account. It never drives a balance negative.
func (a *Account) Withdraw(m Money) error {
	if !m.IsPositive() {
		return ErrNonPositive
	}
	if a.balances[m.cur].LessThan(m.value) {
		return ErrInsufficientFunds
	}
	a.balances[m.cur] = a.balances[m.cur].Sub(m.value)
	return nil
}

// Exchange debits m and credits its conversion into 'to', rounded to the
// minor unit. It returns the credited amount and the rate used.
func (a *Account) Exchange(m Money, to Currency) (Money, decimal.Decimal, error) {
	if m.cur == to {
		return Money{}, decimal.Zero, ErrSameCurrency
	}
	if !m.IsPositive() {
		return Money{}, decimal.Zero, ErrNonPositive
	}
	if a.balances[m.cur].LessThan(m.value) {
		return Money{}, decimal.Zero, ErrInsufficientFunds
	}
	// The credit is rounded to the minor unit, as it is persisted.
	converted := Convert(m, to).Round()
	if err := a.credit(converted); err != nil {
		return Money{}, decimal.Zero, err
	}
	a.balances[m.cur] = a.balances[m.cur].Sub(m.value)
	return converted, Rate(m.cur, to), nil
}

// OwnersCSV returns the owner list as persisted on the wire.
func (a *Account) OwnersCSV() string { return strings.Join(a.Owners, ",") }

// Store is the complete set of users and accounts. It is always loaded and
// saved as one unit.
//
// A Store is not safe for concurrent use; access it through a Repository.
type Store struct {
	users    []User
	accounts []*Account
	byName   map[string]int // index in users
	byID     map[string]int // index in accounts
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byName: make(map[string]int),
		byID:   make(map[string]int),
	}
}

// User returns the user registered under name, or nil.
func (s *Store) User(name string) *User {
	i, ok := s.byName[name]
	if !ok {
		return nil
	}
	u := s.users[i]
	return &u
}

// Account returns the account with this id, or nil. The returned account
// belongs to the store: mutating it mutates the store.
func (s *Store) Account(id string) *Account {
	i, ok := s.byID[id]
	if !ok {
		return nil
	}
	return s.accounts[i]
}

// Users iterates over users in registration order.
func (s *Store) Users() iter.Seq[User] { return slices.Values(s.users) }

// Accounts iterates over accounts in creation order.
func (s *Store) Accounts() iter.Seq[*Account] { return slices.Values(s.accounts) }

// AccountsOf iterates over the accounts listing username as an owner.
func (s *Store) AccountsOf(username string) iter.Seq[*Account] {
	return func(yield func(*Account) bool) {
		for _, a := range s.accounts {
			if a.IsOwner(username) && !yield(a) {
				return
			}
		}
	}
}

// Len returns the number of users and accounts.
func (s *Store) Len() (users, accounts int) { return len(s.users), len(s.accounts) }

// ValidateCredentials checks the shape of a username and password.
func ValidateCredentials(username, password string) error {
	switch {
	case username == "" || strings.ContainsAny(username, ", \t\r\n"):
		return ErrInvalidName
	case len(username) > MaxNameLength:
		return ErrNameTooLong
	case password == "" || strings.ContainsAny(password, " \t\r\n"):
		return ErrInvalidPassword
	case len(password) > MaxNameLength:
		return ErrPasswordTooLong
	}
	return nil
}

// Register adds a new user.
func (s *Store) Register(username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}
	if s.User(username) != nil {
		return ErrUserExists
	}
	if len(s.users) >= MaxUsers {
		return ErrUserLimit
	}
	s.appendUser(User{Username: username, Password: password})
	return nil
}

// Authenticate checks username and password against the registered users.
func (s *Store) Authenticate(username, password string) error {
	u := s.User(username)
	if u == nil {
		return ErrNoSuchUser
	}
	if u.Password != password {
		return ErrWrongPassword
	}
	return nil
}

// ParseOwners splits a comma separated owner list. It only checks the shape
// of the list, not that owners are registered.
func ParseOwners(csv string) ([]string, error) {
	if strings.Trim(csv, ",") == "" {
		return nil, ErrEmptyOwners
	}
	owners := strings.Split(csv, ",")
	for i, o := range owners {
		if o == "" || strings.ContainsAny(o, " \t") {
			return nil, ErrMalformedOwners
		}
		if slices.Contains(owners[:i], o) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOwner, o)
		}
	}
	if len(owners) > MaxOwners {
		return nil, ErrTooManyOwners
	}
	return owners, nil
}

// CreateAccount opens a new account for creator with zero balances.
//
// Owners must all be registered. An individual account has exactly one
// owner, the creator; a joint account must list the creator.
func (s *Store) CreateAccount(creator string, kind AccountKind, owners []string, rnd *rand.Rand) (*Account, error) {
	if len(owners) == 0 {
		return nil, ErrEmptyOwners
	}
	if len(owners) > MaxOwners {
		return nil, ErrTooManyOwners
	}
	for _, o := range owners {
		if s.User(o) == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOwner, o)
		}
	}
	switch kind {
	case Individual:
		if len(owners) != 1 {
			return nil, ErrIndividualOwners
		}
		if owners[0] != creator {
			return nil, ErrIndividualOwner
		}
	case Joint:
		if !slices.Contains(owners, creator) {
			return nil, ErrJointCreator
		}
	default:
		return nil, ErrInvalidKind
	}
	if len(s.accounts) >= MaxAccounts {
		return nil, ErrAccountLimit
	}
	id, err := s.newAccountID(rnd)
	if err != nil {
		return nil, err
	}
	a := &Account{ID: id, Kind: kind, Owners: slices.Clone(owners)}
	s.appendAccount(a)
	return a, nil
}

// newAccountID draws random ids until one is free.
func (s *Store) newAccountID(rnd *rand.Rand) (string, error) {
	for range accountIDAttempts {
		id := fmt.Sprintf("%s%d", accountIDPrefix, accountIDMin+rnd.IntN(accountIDSpan))
		if _, taken := s.byID[id]; !taken {
			return id, nil
		}
	}
	return "", ErrAccountIDSpace
}

// OwnedAccount returns the account 'id' if username owns it.
func (s *Store) OwnedAccount(id, username string) (*Account, error) {
	a := s.Account(id)
	if a == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchAccount, id)
	}
	if !a.IsOwner(username) {
		return nil, ErrNotOwner
	}
	return a, nil
}

func (s *Store) appendUser(u User) {
	s.byName[u.Username] = len(s.users)
	s.users = append(s.users, u)
}

func (s *Store) appendAccount(a *Account) {
	s.byID[a.ID] = len(s.accounts)
	s.accounts = append(s.accounts, a)
}

// Check verifies every store invariant and returns one message per violation.
func (s *Store) Check() []string {
	var problems []string
	if len(s.users) > MaxUsers {
		problems = append(problems, fmt.Sprintf("%d users exceed the limit of %d", len(s.users), MaxUsers))
	}
	if len(s.accounts) > MaxAccounts {
		problems = append(problems, fmt.Sprintf("%d accounts exceed the limit of %d", len(s.accounts), MaxAccounts))
	}
	for _, u := range s.users {
		if err := ValidateCredentials(u.Username, u.Password); err != nil {
			problems = append(problems, fmt.Sprintf("user %q: %v", u.Username, err))
		}
	}
	for _, a := range s.accounts {
		switch {
		case len(a.Owners) == 0:
			problems = append(problems, fmt.Sprintf("account %s has no owner", a.ID))
		case len(a.Owners) > MaxOwners:
			problems = append(problems, fmt.Sprintf("account %s has %d owners", a.ID, len(a.Owners)))
		case a.Kind == Individual && len(a.Owners) != 1:
			problems = append(problems, fmt.Sprintf("individual account %s has %d owners", a.ID, len(a.Owners)))
		}
		for i, o := range a.Owners {
			if s.User(o) == nil {
				problems = append(problems, fmt.Sprintf("account %s owner %q is not registered", a.ID, o))
			}
			if slices.Contains(a.Owners[:i], o) {
				problems = append(problems, fmt.Sprintf("account %s lists owner %q twice", a.ID, o))
			}
		}
		for _, c := range Currencies() {
			if a.balances[c].IsNegative() {
				problems = append(problems, fmt.Sprintf("account %s has a negative %s balance", a.ID, c))
			}
		}
	}
	return problems
}
