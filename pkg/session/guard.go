package session

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoCredentials is returned by NewGuard for an empty credential mapping.
var ErrNoCredentials = errors.New("no credentials configured")

// Guard checks logins against a static username -> password mapping. A
// password may be stored as a bcrypt hash.
type Guard struct {
	credentials map[string]string
}

func NewGuard(credentials map[string]string) (*Guard, error) {
	if len(credentials) == 0 {
		return nil, ErrNoCredentials
	}
	creds := make(map[string]string, len(credentials))
	for user, pass := range credentials {
		if user == "" || pass == "" {
			return nil, errors.New("credential entries must have a username and a password")
		}
		creds[user] = pass
	}
	return &Guard{credentials: creds}, nil
}

// SubmitCredentials unlocks sess when username and password match. The
// password is never stored in the session.
func (g *Guard) SubmitCredentials(sess *Session, username, password string) {
	if g.verify(username, password) {
		sess.Authenticated = true
		sess.LastAttemptFailed = false
		sess.Username = username
		return
	}
	sess.Authenticated = false
	sess.LastAttemptFailed = true
	sess.Username = ""
}

func (g *Guard) IsAuthenticated(sess *Session) bool {
	return sess != nil && sess.Authenticated
}

// LogOut locks sess again.
func (g *Guard) LogOut(sess *Session) {
	sess.Authenticated = false
	sess.LastAttemptFailed = false
	sess.Username = ""
}

func (g *Guard) verify(username, password string) bool {
	if username == "" || password == "" {
		return false
	}
	stored, ok := g.credentials[username]
	if !ok {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// HashPassword returns a bcrypt hash suitable for the secrets file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
