package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type fakeAuth struct {
	loginToken    string
	loginErr      error
	registerToken string
	loggedOut     []string
}

func (f *fakeAuth) Login(_ context.Context, _ Credentials) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, _ Credentials) (string, error) {
	return f.registerToken, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func TestSessionLoginPersistsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session", "token")
	auth := &fakeAuth{loginToken: "tok-123"}

	s, err := Open(auth, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Authenticated() {
		t.Fatal("fresh session must be logged out")
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() err = %v, want ErrNotAuthenticated", err)
	}

	if err := s.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	tok, err := s.Token()
	if err != nil || tok != "tok-123" {
		t.Errorf("Token() = %q, %v", tok, err)
	}

	// A new process picks the token up from disk.
	restored, err := Open(auth, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	tok, err = restored.Token()
	if err != nil || tok != "tok-123" {
		t.Errorf("restored Token() = %q, %v", tok, err)
	}
}

func TestSessionLoginFailureKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	auth := &fakeAuth{loginErr: errors.New("bad credentials")}

	s, err := Open(auth, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Login(context.Background(), Credentials{}); err == nil {
		t.Fatal("expected login error")
	}
	if s.Authenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestSessionLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	auth := &fakeAuth{loginToken: "tok-9"}

	s, _ := Open(auth, path)
	if err := s.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.Authenticated() {
		t.Error("session still authenticated after logout")
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "tok-9" {
		t.Errorf("upstream logout calls = %v", auth.loggedOut)
	}

	// Token file is gone; a reopen starts logged out.
	restored, err := Open(auth, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if restored.Authenticated() {
		t.Error("token survived logout on disk")
	}
}

func TestRegisterAuthenticates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	auth := &fakeAuth{registerToken: "fresh"}

	s, _ := Open(auth, path)
	if err := s.Register(context.Background(), Credentials{Email: "new@user"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !s.Authenticated() {
		t.Error("register must authenticate the session")
	}
}
