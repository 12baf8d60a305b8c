// Package repository declares the storage interfaces the services depend on.
// internal/repository/sqlite is the only implementation; services are
// tested against hand-written fakes of these interfaces.
package repository

import (
	"context"

	"github.com/sakif/campus-market/internal/model"
)

type ListOptions struct {
	Kind   model.Kind // empty: every kind
	Limit  int
	Offset int
}

// ListingRepository is the listing catalog. Listings are created and read;
// editing and deleting a listing are not supported.
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, opts ListOptions) ([]model.Listing, error)
}

// UserRepository stores accounts for the password-checking authenticator.
type UserRepository interface {
	// Create fails with apperror.ErrConflict when the email is taken.
	Create(ctx context.Context, account *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}
