package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
)

func newTestUserDB(t *testing.T) *UserDB {
	t.Helper()
	return newTestDB(t).Users()
}

func TestUserCreate(t *testing.T) {
	u := newTestUserDB(t)

	a := &model.Account{
		User:         model.User{Email: "Alice@Example.com", Name: "alice"},
		PasswordHash: "$2a$04$hash",
	}
	if err := u.Create(context.Background(), a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if a.ID == "" {
		t.Error("Create() did not set ID")
	}
	if a.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lower-cased", a.Email)
	}
	if a.SubscriptionTier != model.TierFree {
		t.Errorf("SubscriptionTier = %q, want %q", a.SubscriptionTier, model.TierFree)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()

	if err := u.Create(ctx, &model.Account{User: model.User{Email: "bob@example.com"}, PasswordHash: "x"}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	err := u.Create(ctx, &model.Account{User: model.User{Email: "BOB@example.com"}, PasswordHash: "y"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Create() error = %v, want ErrConflict", err)
	}
}

func TestGetByEmail(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()

	want := &model.Account{User: model.User{Email: "carol@example.com", Name: "Carol"}, PasswordHash: "hash"}
	if err := u.Create(ctx, want); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := u.GetByEmail(ctx, "CAROL@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != want.ID || got.Name != "Carol" || got.PasswordHash != "hash" {
		t.Errorf("GetByEmail() = %+v, want %+v", got, want)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	u := newTestUserDB(t)

	_, err := u.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}
