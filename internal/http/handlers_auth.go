package http

import (
	"net/http"
	"net/mail"
	"strings"

	"finpulse/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req credentialsRequest) toCredentials() (session.Credentials, string) {
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return session.Credentials{}, "invalid email address"
	}
	if len(req.Password) < 8 {
		return session.Credentials{}, "password must be at least 8 characters"
	}
	return session.Credentials{Email: email, Password: req.Password}, ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.sess == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "authentication requires the api backend"})
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	creds, problem := req.toCredentials()
	if problem != "" {
		badRequest(w, "%s", problem)
		return
	}

	if err := s.sess.Login(r.Context(), creds); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.sess == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "authentication requires the api backend"})
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	creds, problem := req.toCredentials()
	if problem != "" {
		badRequest(w, "%s", problem)
		return
	}

	if err := s.sess.Register(r.Context(), creds); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.sess == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "authentication requires the api backend"})
		return
	}

	if err := s.sess.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}
