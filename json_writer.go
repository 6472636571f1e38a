package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// jsonObjectWriter helps construct a JSON object with a specific field order.
// Its zero value is ready to use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// Append adds a new key-value pair to the JSON object. The value is marshaled
// to JSON using `json.Marshal`.
func (w *jsonObjectWriter) Append(key string, value interface{}) *jsonObjectWriter {
	if w.err != nil {
		return w
	}

	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}

	w.WriteString(fmt.Sprintf("%q:", key))
	w.Write(valBytes)
	w.WriteString(",")
	return w
}

// MarshalJSON finalizes the JSON object construction, wraps the content in
// braces, and returns the complete JSON byte slice. It satisfies the
// `json.Marshaler` interface.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}

	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')

	return final, nil
}

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON renders the user without its password.
func (u User) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("username", u.Username)
	return w.MarshalJSON()
}

// MarshalJSON renders the account with its balances rounded to the cent.
func (a *Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("kind", a.Kind.String())
	w.Append("owners", a.Owners)
	balances := make([]Money, 0, numCurrencies)
	for _, c := range Currencies() {
		balances = append(balances, a.Balance(c))
	}
	w.Append("balances", balances)
	return w.MarshalJSON()
}

// MarshalJSON renders the whole store, users first.
func (s *Store) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("users", append([]User{}, s.users...))
	w.Append("accounts", append([]*Account{}, s.accounts...))
	return w.MarshalJSON()
}
