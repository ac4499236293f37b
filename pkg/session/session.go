package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store for an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Session is the state of one interactive user session.
type Session struct {
	ID                string    `json:"id"`
	Username          string    `json:"username,omitempty"`
	Authenticated     bool      `json:"authenticated"`
	LastAttemptFailed bool      `json:"last_attempt_failed,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// Flash is shown once on the next page render.
	Flash      string `json:"flash,omitempty"`
	FlashError bool   `json:"flash_error,omitempty"`
}

// TakeFlash returns and clears the pending message.
func (s *Session) TakeFlash() (string, bool) {
	msg, isErr := s.Flash, s.FlashError
	s.Flash, s.FlashError = "", false
	return msg, isErr
}

// Store persists sessions by ID.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// Manager creates, loads and drops sessions.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Start creates a new locked session. It is not stored until Save.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, CreatedAt: m.now()}, nil
}

// Load returns the session for id, or an unsaved fresh one when id is unknown
// or expired.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		sess, err := m.store.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return m.Start(ctx)
}

func (m *Manager) Save(ctx context.Context, sess *Session) error {
	return m.store.Save(ctx, sess)
}

// End drops the session.
func (m *Manager) End(ctx context.Context, sess *Session) error {
	return m.store.Delete(ctx, sess.ID)
}

func generateID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
