package exchange

// Session is the authentication slot of one connection. The zero value is
// an anonymous session. Sessions are never shared nor persisted.
type Session struct {
	username string
}

// Login records username as the authenticated identity, replacing any
// previous one. There is no logout: the session ends with its connection.
func (s *Session) Login(username string) { s.username = username }

// User returns the authenticated username, or "" and false.
func (s *Session) User() (string, bool) { return s.username, s.username != "" }

// Require returns the authenticated username or ErrNotLoggedIn.
func (s *Session) Require() (string, error) {
	if s.username == "" {
		return "", ErrNotLoggedIn
	}
	return s.username, nil
}
