package session

import (
	"context"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/campus-market/internal/model"
)

// Authenticator turns sign-up / sign-in input into an identity.
//
// The store delegates here so the stand-in below can be swapped for a real
// remote call without touching the store or its callers. Both methods take
// a context for that reason even though the local implementation never
// blocks.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, name string) (model.User, error)
	SignIn(ctx context.Context, email, password string) (model.User, error)
}

// LocalAuthenticator synthesizes identities without checking anything.
// Every sign-in succeeds; the password is ignored.
type LocalAuthenticator struct{}

var _ Authenticator = LocalAuthenticator{}

func (LocalAuthenticator) SignUp(_ context.Context, email, _ string, name string) (model.User, error) {
	return model.User{
		ID:               xid.New().String(),
		Email:            email,
		Name:             name,
		SubscriptionTier: model.TierFree,
	}, nil
}

func (LocalAuthenticator) SignIn(_ context.Context, email, _ string) (model.User, error) {
	return model.User{
		ID:               xid.New().String(),
		Email:            email,
		Name:             DisplayName(email),
		SubscriptionTier: model.TierFree,
	}, nil
}

// DisplayName derives a name from an email address: everything before the
// first "@", or the whole string when there is none.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
