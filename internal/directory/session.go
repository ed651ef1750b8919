package directory

import "strings"

// Session is the authenticated capability against a single server. The
// sharee model only cares that one is present; the client uses it to build
// and authenticate requests.
type Session struct {
	serverURL string
	username  string
	password  string
}

// NewSession creates a session for the given server and credentials. The
// server URL is normalized to have no trailing slash.
func NewSession(serverURL, username, password string) *Session {
	return &Session{
		serverURL: strings.TrimRight(serverURL, "/"),
		username:  username,
		password:  password,
	}
}

// ServerURL returns the normalized server base URL
func (s *Session) ServerURL() string {
	return s.serverURL
}

// Username returns the account name the session authenticates as
func (s *Session) Username() string {
	return s.username
}
