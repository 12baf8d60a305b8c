package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/auth"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/repository"
	"github.com/sakif/campus-market/internal/session"
)

// MinPasswordLength applies to sign-up only; sign-in never reveals rules.
const MinPasswordLength = 8

// errBadCredentials is deliberately the same for "no such email" and
// "wrong password" so sign-in cannot be used to probe for accounts.
var errBadCredentials = apperror.Unauthorized("invalid email or password")

// AccountAuthenticator is a session.Authenticator that checks passwords
// against bcrypt hashes in the users table. The session store uses
// session.LocalAuthenticator unless the server is started with
// ACCOUNTS_ENABLED=true.
type AccountAuthenticator struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

var _ session.Authenticator = (*AccountAuthenticator)(nil)

func NewAccountAuthenticator(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AccountAuthenticator {
	return &AccountAuthenticator{users: users, passwords: passwords, logger: logger}
}

// SignUp creates an account. A blank name falls back to the email's local
// part, the same name LocalAuthenticator would have derived.
func (a *AccountAuthenticator) SignUp(ctx context.Context, email, password, name string) (model.User, error) {
	email = strings.TrimSpace(email)

	var errs apperror.ValidationErrors
	if !strings.Contains(email, "@") {
		errs.Add("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if err := errs.OrNil(); err != nil {
		return model.User{}, err
	}

	hash, err := a.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return model.User{}, apperror.ValidationFailed("password", "password is too long")
		}
		return model.User{}, fmt.Errorf("service: hashing password: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = session.DisplayName(email)
	}
	acct := &model.Account{
		User:         model.User{Email: email, Name: name, SubscriptionTier: model.TierFree},
		PasswordHash: hash,
	}
	if err := a.users.Create(ctx, acct); err != nil {
		return model.User{}, fmt.Errorf("service: creating account: %w", err)
	}

	a.logger.Info("account created", slog.String("userID", acct.ID))
	return acct.User, nil
}

func (a *AccountAuthenticator) SignIn(ctx context.Context, email, password string) (model.User, error) {
	acct, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.User{}, errBadCredentials
		}
		return model.User{}, fmt.Errorf("service: looking up account: %w", err)
	}

	if err := a.passwords.Verify(acct.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return model.User{}, errBadCredentials
		}
		return model.User{}, fmt.Errorf("service: verifying password: %w", err)
	}

	return acct.User, nil
}
