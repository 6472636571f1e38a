package exchange

import "errors"

// Domain errors. They reject a command without touching the store; any
// other error returned by this package is an I/O or locking failure.
var (
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrUserExists        = errors.New("user already exists")
	ErrUserLimit         = errors.New("user limit reached")
	ErrNameTooLong       = errors.New("username too long")
	ErrPasswordTooLong   = errors.New("password too long")
	ErrInvalidName       = errors.New("invalid username")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrNoSuchUser        = errors.New("no such user")
	ErrWrongPassword     = errors.New("wrong password")
	ErrInvalidKind       = errors.New("invalid account kind")
	ErrEmptyOwners       = errors.New("empty owner list")
	ErrMalformedOwners   = errors.New("malformed owner list")
	ErrDuplicateOwner    = errors.New("duplicate owner")
	ErrTooManyOwners     = errors.New("too many owners")
	ErrUnknownOwner      = errors.New("owner is not a registered user")
	ErrIndividualOwners  = errors.New("individual account must have exactly one owner")
	ErrIndividualOwner   = errors.New("individual account owner must be the creator")
	ErrJointCreator      = errors.New("joint account must include the creator")
	ErrAccountLimit      = errors.New("account limit reached")
	ErrAccountIDSpace    = errors.New("could not generate account id")
	ErrNoSuchAccount     = errors.New("no such account")
	ErrNotOwner          = errors.New("not an owner")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrSameCurrency      = errors.New("currencies must differ")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositive       = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount has too many decimals")
	ErrAmountTooLarge    = errors.New("amount too large")
	ErrBalanceLimit      = errors.New("balance limit reached")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
