// Package auth holds the bearer-token credential cache. Tokens are
// persisted twice: into the local store's state table for the client
// itself, and into a cookie file that the desktop route gate reads without
// going through the client. This is a token cache, not a security
// boundary; nothing here is encrypted.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
)

// CookieName is the name under which the token is mirrored
const CookieName = "zebra-token"

type stateStore interface {
	State(key string) (string, bool)
	SetState(key, value string) error
	DeleteState(key string) error
}

// Store caches the auth token and user identity
type Store struct {
	mu         sync.Mutex
	state      stateStore
	cookiePath string
	token      string
	email      string
}

// New loads credentials from the state store. cookiePath may be empty to
// disable the cookie mirror (tests).
func New(state stateStore, cookiePath string) *Store {
	s := &Store{state: state, cookiePath: cookiePath}
	s.token, _ = state.State(localstore.KeyAuthToken)
	s.email, _ = state.State(localstore.KeyUserEmail)
	return s
}

// DefaultCookiePath returns ~/.zebra/cookie
func DefaultCookiePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".zebra", "cookie")
}

// SetCredentials stores the token and email in both channels. The caller
// observes no state where only one copy exists.
func (s *Store) SetCredentials(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.SetState(localstore.KeyAuthToken, token); err != nil {
		return err
	}
	if err := s.state.SetState(localstore.KeyUserEmail, email); err != nil {
		return err
	}
	s.writeCookie(token)

	s.token = token
	s.email = email
	return nil
}

// Clear removes the credentials from both channels
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.email = ""

	if err := s.state.DeleteState(localstore.KeyAuthToken); err != nil {
		return err
	}
	if err := s.state.DeleteState(localstore.KeyUserEmail); err != nil {
		return err
	}
	if s.cookiePath != "" {
		if err := os.Remove(s.cookiePath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove cookie file", logger.F("error", err))
		}
	}
	return nil
}

// Token returns the cached token, or "" when logged out
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Email returns the logged-in user's email, or ""
func (s *Store) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// LoggedIn reports whether a token is present
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) writeCookie(token string) {
	if s.cookiePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cookiePath), 0o755); err != nil {
		logger.Warn("failed to create cookie directory", logger.F("error", err))
		return
	}
	line := fmt.Sprintf("%s=%s\n", CookieName, token)
	if err := os.WriteFile(s.cookiePath, []byte(line), 0o600); err != nil {
		logger.Warn("failed to write cookie file", logger.F("error", err))
	}
}
