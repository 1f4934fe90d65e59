// Package session holds the authenticated state of the service against
// the upstream finance API. The token lives in one place, is persisted to
// disk so restarts keep their login, and every change goes through the
// explicit Login, Register and Logout entry points.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotAuthenticated is returned when an operation needs a token and the
// session has none.
var ErrNotAuthenticated = errors.New("not authenticated")

// Credentials is the upstream login/register payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticator exchanges credentials for tokens with the upstream API.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Register(ctx context.Context, creds Credentials) (string, error)
	Logout(ctx context.Context, token string) error
}

// Session is the single mutable holder of the auth token.
type Session struct {
	mu    sync.RWMutex
	auth  Authenticator
	path  string
	token string
}

// Open restores a session from the token file at path. A missing file
// means a logged-out session, not an error.
func Open(auth Authenticator, path string) (*Session, error) {
	s := &Session{auth: auth, path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	s.token = strings.TrimSpace(string(raw))
	return s, nil
}

// Login authenticates and stores the resulting token.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return s.setToken(token)
}

// Register creates an upstream account and logs the session in.
func (s *Session) Register(ctx context.Context, creds Credentials) error {
	token, err := s.auth.Register(ctx, creds)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return s.setToken(token)
}

// Logout revokes the token upstream and clears local state. The local
// clear happens even when the upstream call fails; a dead token on the
// server is preferable to a live one on disk.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.mu.Unlock()

	_ = os.Remove(s.path)
	if token == "" {
		return nil
	}
	if err := s.auth.Logout(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Token returns the current token, or ErrNotAuthenticated.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotAuthenticated
	}
	return s.token, nil
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) setToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	return nil
}
