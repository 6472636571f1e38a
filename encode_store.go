package exchange

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Record keywords of the snapshot format.
const (
	userRecord    = "USER"
	accountRecord = "ACC"
	noOwners      = "-"

	// maxRecordLength bounds one line of the snapshot, terminator excluded.
	maxRecordLength = 1024
)

var errRecordTooLong = errors.New("record too long")

// DecodeStore reads a full snapshot, one record per line:
//
//	USER <username> <password>
//	ACC <id> <IND|JOINT> <ownerCount> <owner1,owner2,...> <USD> <EUR> <GBP>
//
// Lines that do not have one of these shapes are dropped, so are duplicate
// users and accounts, and records beyond MaxUsers or MaxAccounts. Only a read
// error fails.
func DecodeStore(r io.Reader) (*Store, error) {
	return decodeStore(r, func(lineNo int, err error) {
		logrus.WithFields(logrus.Fields{"line": lineNo, "reason": err}).Debug("dropping store record")
	})
}

// VerifyStore decodes a snapshot and reports every dropped line and every
// broken invariant of the result, one message each.
func VerifyStore(r io.Reader) ([]string, error) {
	var problems []string
	s, err := decodeStore(r, func(lineNo int, err error) {
		problems = append(problems, fmt.Sprintf("line %d dropped: %v", lineNo, err))
	})
	if err != nil {
		return nil, err
	}
	return append(problems, s.Check()...), nil
}

func decodeStore(r io.Reader, drop func(lineNo int, err error)) (*Store, error) {
	store := NewStore()
	br := bufio.NewReaderSize(r, maxRecordLength+2)

	for lineNo := 1; ; lineNo++ {
		line, err := readRecord(br)
		switch {
		case errors.Is(err, io.EOF):
			return store, nil
		case errors.Is(err, errRecordTooLong):
			drop(lineNo, err)
			continue
		case err != nil:
			return nil, fmt.Errorf("error reading store: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue // Skip blank lines
		}
		switch fields[0] {
		case userRecord:
			err = store.decodeUser(fields)
		case accountRecord:
			err = store.decodeAccount(fields)
		default:
			err = fmt.Errorf("unknown record %q", fields[0])
		}
		if err != nil {
			drop(lineNo, err)
		}
	}
}

// readRecord returns the next line without its terminator; the last line may
// lack one. Lines over maxRecordLength are consumed and reported as
// errRecordTooLong. It returns io.EOF once the input is exhausted.
func readRecord(br *bufio.Reader) (string, error) {
	line, err := br.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", errRecordTooLong
	case errors.Is(err, io.EOF):
		if len(line) == 0 {
			return "", io.EOF
		}
	case err != nil:
		return "", err
	}
	s := strings.TrimRight(string(line), "\r\n")
	if len(s) > maxRecordLength {
		return "", errRecordTooLong
	}
	return s, nil
}

func (s *Store) decodeUser(fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("user record has %d fields", len(fields))
	}
	if len(s.users) >= MaxUsers {
		return ErrUserLimit
	}
	username, password := fields[1], fields[2]
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}
	if s.User(username) != nil {
		return ErrUserExists
	}
	s.appendUser(User{Username: username, Password: password})
	return nil
}

func (s *Store) decodeAccount(fields []string) error {
	if len(fields) != 8 {
		return fmt.Errorf("account record has %d fields", len(fields))
	}
	if len(s.accounts) >= MaxAccounts {
		return ErrAccountLimit
	}
	id := fields[1]
	if len(id) > MaxNameLength {
		return fmt.Errorf("account id %q too long", id)
	}
	if s.Account(id) != nil {
		return fmt.Errorf("duplicate account %q", id)
	}
	kind, err := ParseAccountKind(fields[2])
	if err != nil {
		return err
	}
	declared, err := strconv.Atoi(fields[3])
	if err != nil {
		return fmt.Errorf("invalid owner count: %w", err)
	}
	declared = min(declared, MaxOwners)

	// The owner list is truncated to the declared count.
	var owners []string
	if fields[4] != noOwners {
		for o := range strings.SplitSeq(fields[4], ",") {
			if len(owners) >= declared {
				break
			}
			if o == "" {
				continue
			}
			owners = append(owners, o)
		}
	}
	if len(owners) == 0 {
		return ErrEmptyOwners
	}

	a := &Account{ID: id, Kind: kind, Owners: owners}
	for i, c := range Currencies() {
		v, err := parsePlainDecimal(fields[5+i])
		if err != nil {
			return fmt.Errorf("invalid %s balance: %w", c, err)
		}
		if v.IsNegative() {
			return fmt.Errorf("negative %s balance", c)
		}
		a.balances[c] = v.Round(AmountDecimals)
	}
	s.appendAccount(a)
	return nil
}

// EncodeStore writes the full snapshot: all users in registration order, then
// all accounts in creation order, balances with two decimals.
func EncodeStore(w io.Writer, s *Store) error {
	bw := bufio.NewWriter(w)
	for _, u := range s.users {
		fmt.Fprintf(bw, "%s %s %s\n", userRecord, u.Username, u.Password)
	}
	for _, a := range s.accounts {
		owners := a.OwnersCSV()
		if owners == "" {
			owners = noOwners
		}
		fmt.Fprintf(bw, "%s %s %s %d %s %s %s %s\n", accountRecord, a.ID, a.Kind, len(a.Owners), owners,
			a.Balance(USD).Fixed(), a.Balance(EUR).Fixed(), a.Balance(GBP).Fixed())
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}
