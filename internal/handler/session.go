package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/session"
)

// SessionHandler exposes the session store of the enclosing provider scope.
//
// It does not hold a store itself: each request reaches the store through
// session.FromContext, so mounting these routes outside session.Provider
// answers 500 configuration_error instead of acting on some default store.
type SessionHandler struct {
	logger *slog.Logger
}

func NewSessionHandler(logger *slog.Logger) *SessionHandler {
	return &SessionHandler{logger: logger}
}

// SessionResponse is the observable session state.
type SessionResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken,omitempty"`
	Loading     bool        `json:"loading"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func sessionState(s *session.Store) SessionResponse {
	resp := SessionResponse{Loading: s.Loading()}
	if u, ok := s.User(); ok {
		resp.User = &u
	}
	resp.AccessToken, _ = s.AccessToken()
	return resp
}

// HandleGet returns the current identity.
//
// HTTP: GET /api/session
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionState(s))
}

// HandleSignUp creates an identity and makes it current.
//
// HTTP: POST /api/session/signup
// REQUEST BODY: {"email": "bob@example.com", "password": "...", "name": "Bob"}
func (h *SessionHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.SignUp(r.Context(), req.Email, req.Password, req.Name); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionState(s))
}

// HandleSignIn makes the identity for an email current.
//
// HTTP: POST /api/session/signin
// REQUEST BODY: {"email": "alice@example.com", "password": "..."}
func (h *SessionHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.SignIn(r.Context(), req.Email, req.Password); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionState(s))
}

// HandleSignOut clears the identity.
//
// HTTP: POST /api/session/signout
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := s.SignOut(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateProfile replaces the identity with the body, verbatim.
//
// HTTP: PUT /api/session/profile
// REQUEST BODY: a full user object
func (h *SessionHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromContext(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	var user model.User
	if err := decodeJSON(w, r, &user); err != nil {
		writeError(w, err)
		return
	}

	if err := s.UpdateProfile(user); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (h *SessionHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Warn("session request failed", slog.String("error", err.Error()))
	writeError(w, err)
}
