package exchange

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestDecodeStore(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		wantUsers    []string
		wantAccounts []string // id:owners
	}{
		{
			name:         "empty",
			input:        "",
			wantUsers:    nil,
			wantAccounts: nil,
		},
		{
			name: "valid records and blank lines",
			input: `
USER alice a1

USER bob b1
ACC ACC1000 IND 1 alice 1.00 2.00 3.00
ACC ACC2000 JOINT 2 alice,bob 0.00 0.00 0.00
`,
			wantUsers:    []string{"alice", "bob"},
			wantAccounts: []string{"ACC1000:alice", "ACC2000:alice,bob"},
		},
		{
			name: "malformed lines are dropped",
			input: `USER alice
USER bob b1 extra
BANK x
ACC ACC1000 IND 1 bob 1.00 2.00
ACC ACC2000 SOLO 1 bob 0.00 0.00 0.00
ACC ACC3000 IND x bob 0.00 0.00 0.00
USER bob b1
`,
			wantUsers:    []string{"bob"},
			wantAccounts: nil,
		},
		{
			name: "duplicates keep the first record",
			input: `USER alice a1
USER alice other
ACC ACC1000 IND 1 alice 1.00 0.00 0.00
ACC ACC1000 IND 1 alice 9.00 0.00 0.00
`,
			wantUsers:    []string{"alice"},
			wantAccounts: []string{"ACC1000:alice"},
		},
		{
			name: "invalid balances are dropped",
			input: `ACC ACC1000 IND 1 alice -1.00 0.00 0.00
ACC ACC2000 IND 1 alice 0.00 abc 0.00
ACC ACC3000 IND 1 alice 0.00 0.00 0.00
`,
			wantAccounts: []string{"ACC3000:alice"},
		},
		{
			name: "owner list is truncated to the declared count",
			input: `ACC ACC1000 JOINT 2 a,b,c 0.00 0.00 0.00
ACC ACC2000 JOINT 9 a,b,c,d,e,f,g 0.00 0.00 0.00
ACC ACC3000 JOINT 0 a 0.00 0.00 0.00
ACC ACC4000 JOINT 1 - 0.00 0.00 0.00
`,
			wantAccounts: []string{"ACC1000:a,b", "ACC2000:a,b,c,d,e"},
		},
		{
			name:      "over-long lines are dropped",
			input:     "USER alice pw\nJUNK " + strings.Repeat("x", 70000) + "\nUSER bob pw\n",
			wantUsers: []string{"alice", "bob"},
		},
		{
			name:      "over-long last line without newline",
			input:     "USER alice pw\n" + strings.Repeat("x", 2000),
			wantUsers: []string{"alice"},
		},
		{
			name:      "whitespace lines and missing final newline",
			input:     "   \nUSER alice a1\n\t\nUSER bob b1",
			wantUsers: []string{"alice", "bob"},
		},
		{
			name: "balances must be plain decimals",
			input: `ACC ACC1000 IND 1 alice 1e3 0.00 0.00
ACC ACC2000 IND 1 alice 0.00 1234567890123456.00 0.00
ACC ACC3000 IND 1 alice 0.00 0.00 999999999999999.99
`,
			wantAccounts: []string{"ACC3000:alice"},
		},
		{
			name:      "windows line endings",
			input:     "USER alice a1\r\nUSER bob b1\r\n",
			wantUsers: []string{"alice", "bob"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			s, err := DecodeStore(strings.NewReader(tc.input))

			// Assert
			if err != nil {
				t.Fatalf("DecodeStore() returned an unexpected error: %v", err)
			}
			var users, accounts []string
			for u := range s.Users() {
				users = append(users, u.Username)
			}
			for a := range s.Accounts() {
				accounts = append(accounts, a.ID+":"+a.OwnersCSV())
			}
			if !slices.Equal(users, tc.wantUsers) {
				t.Errorf("DecodeStore() users = %v, want %v", users, tc.wantUsers)
			}
			if !slices.Equal(accounts, tc.wantAccounts) {
				t.Errorf("DecodeStore() accounts = %v, want %v", accounts, tc.wantAccounts)
			}
		})
	}
}

func TestDecodeStoreLimits(t *testing.T) {
	var b strings.Builder
	for i := range MaxUsers + 10 {
		fmt.Fprintf(&b, "USER user%d pw\n", i)
	}
	for i := range MaxAccounts + 10 {
		fmt.Fprintf(&b, "ACC ACC%d IND 1 user0 0.00 0.00 0.00\n", accountIDMin+i)
	}

	s, err := DecodeStore(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}

	users, accounts := s.Len()
	if users != MaxUsers {
		t.Errorf("DecodeStore() loaded %d users, want %d", users, MaxUsers)
	}
	if accounts != MaxAccounts {
		t.Errorf("DecodeStore() loaded %d accounts, want %d", accounts, MaxAccounts)
	}
}

func TestDecodeStoreRoundsBalances(t *testing.T) {
	s, err := DecodeStore(strings.NewReader("ACC ACC1000 IND 1 alice 1.005 2.004 0\n"))
	if err != nil {
		t.Fatal(err)
	}

	a := s.Account("ACC1000")
	if a == nil {
		t.Fatal("DecodeStore() dropped the account")
	}
	for c, want := range map[Currency]Money{USD: M(1.01, USD), EUR: M(2, EUR), GBP: M(0, GBP)} {
		if got := a.Balance(c); !got.Equal(want) {
			t.Errorf("%s balance = %s, want %s", c, got.Decimal(), want.Decimal())
		}
	}
}

func TestEncodeStore(t *testing.T) {
	// Arrange
	s := newTestStore(t, "alice", "bob")
	ind, err := s.CreateAccount("alice", Individual, []string{"alice"}, newRand())
	if err != nil {
		t.Fatal(err)
	}
	joint, err := s.CreateAccount("bob", Joint, []string{"bob", "alice"}, newRand())
	if err != nil {
		t.Fatal(err)
	}
	if err := ind.Deposit(M(100.5, USD)); err != nil {
		t.Fatal(err)
	}
	if err := joint.Deposit(M(3, GBP)); err != nil {
		t.Fatal(err)
	}

	// Act
	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		t.Fatalf("EncodeStore() failed: %v", err)
	}

	// Assert
	want := "USER alice pw\n" +
		"USER bob pw\n" +
		"ACC " + ind.ID + " IND 1 alice 100.50 0.00 0.00\n" +
		"ACC " + joint.ID + " JOINT 2 bob,alice 0.00 0.00 3.00\n"
	if got := buf.String(); got != want {
		t.Errorf("EncodeStore() =\n%s\nwant:\n%s", got, want)
	}

	// Decoding the encoded store gives the same store back.
	again, err := DecodeStore(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	var buf2 bytes.Buffer
	if err := EncodeStore(&buf2, again); err != nil {
		t.Fatal(err)
	}
	if buf2.String() != buf.String() {
		t.Errorf("round trip changed the store:\n%s\nwant:\n%s", buf2.String(), buf.String())
	}
}

func TestVerifyStore(t *testing.T) {
	input := "USER alice pw\ngarbage\nACC ACC1000 IND 1 bob 0.00 0.00 0.00\n" + strings.Repeat("y", 5000) + "\n"
	problems, err := VerifyStore(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		`line 2 dropped: unknown record "garbage"`,
		`line 4 dropped: record too long`,
		`account ACC1000 owner "bob" is not registered`,
	}
	if !slices.Equal(problems, want) {
		t.Errorf("VerifyStore() = %q, want %q", problems, want)
	}
}
