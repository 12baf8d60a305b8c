// Package session holds the signed-in identity for one application root.
//
// OWNERSHIP:
// A Store is constructed once by the host (cmd/server via internal/server)
// and passed explicitly to whatever needs it: the HTTP session handler, and
// every listing form as its credential source. For code that can only reach
// a request context, NewContext / FromContext open and read a provider
// scope; reading outside one is a wiring defect and fails loudly with
// apperror.ErrConfiguration.
//
// CONCURRENCY:
// HTTP handlers run on many goroutines, so the store guards its state with
// an RWMutex. Reads (User, AccessToken) take the read lock.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/campus-market/internal/auth"
	"github.com/sakif/campus-market/internal/model"
)

// Store is the session capability: current identity, access credential
// and the four session operations.
type Store struct {
	authn  Authenticator
	tokens *auth.TokenService // nil: no credential is ever issued
	logger *slog.Logger

	mu    sync.RWMutex
	user  *model.User
	token string
}

// NewStore creates an empty (signed-out) store.
//
// authn may be nil, in which case LocalAuthenticator is used. tokens may be
// nil, in which case AccessToken always reports absent.
func NewStore(authn Authenticator, tokens *auth.TokenService, logger *slog.Logger) *Store {
	if authn == nil {
		authn = LocalAuthenticator{}
	}
	return &Store{
		authn:  authn,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp creates an identity from the given email and name and makes it
// current, replacing whoever was signed in.
func (s *Store) SignUp(ctx context.Context, email, password, name string) error {
	user, err := s.authn.SignUp(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("session: signing up: %w", err)
	}
	if err := s.establish(user); err != nil {
		return err
	}
	s.logger.Info("signed up", slog.String("userID", user.ID), slog.String("email", user.Email))
	return nil
}

// SignIn makes the identity for email current. With the default
// authenticator the display name is the part of the email before "@".
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	user, err := s.authn.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("session: signing in: %w", err)
	}
	if err := s.establish(user); err != nil {
		return err
	}
	s.logger.Info("signed in", slog.String("userID", user.ID), slog.String("email", user.Email))
	return nil
}

// SignOut clears the identity and credential. It always succeeds; the
// error return keeps the signature uniform with the other operations.
func (s *Store) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.logger.Info("signed out")
	return nil
}

// UpdateProfile replaces the current identity verbatim. No fields are
// merged and none are validated.
//
// The credential names a user ID and email, so when either changes on a
// signed-in session a new one is issued for the replacement identity.
func (s *Store) UpdateProfile(user model.User) error {
	s.mu.RLock()
	prev, token := s.user, s.token
	s.mu.RUnlock()

	if token != "" && prev != nil && (prev.ID != user.ID || prev.Email != user.Email) {
		return s.establish(user)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// User returns a copy of the current identity.
func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// AccessToken returns the current credential, if one was issued.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Loading reports whether the store is still initialising. Nothing is
// loaded asynchronously yet, so this is always false.
func (s *Store) Loading() bool {
	return false
}

// establish issues a credential (when configured) and swaps in the new
// identity. The token is signed before taking the lock so a failure leaves
// the previous session untouched.
func (s *Store) establish(user model.User) error {
	var token string
	if s.tokens != nil {
		t, err := s.tokens.Generate(user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("session: issuing credential: %w", err)
		}
		token = t
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	return nil
}
