package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB exposes the accounts table. It shares the pool with DB but is a
// separate type because both repositories want a method named Create.
type UserDB struct {
	conn *sql.DB
}

// Users returns the account repository backed by the same database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Create inserts an account. Emails are stored lower-cased so lookups are
// case-insensitive; a duplicate email is apperror.ErrConflict.
func (u *UserDB) Create(ctx context.Context, a *model.Account) error {
	a.ID = xid.New().String()
	a.Email = strings.ToLower(a.Email)
	a.CreatedAt = time.Now().UTC()
	if a.SubscriptionTier == "" {
		a.SubscriptionTier = model.TierFree
	}

	var exists int
	err := u.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, a.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking email %s: %w", a.Email, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", "an account with this email already exists")
	}

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, tier, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Email,
		a.Name,
		a.SubscriptionTier,
		a.PasswordHash,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user %s: %w", a.Email, err)
	}
	return nil
}

// GetByEmail returns apperror.ErrNotFound when no account has that email.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(email)

	var a model.Account
	err := u.conn.QueryRowContext(ctx,
		`SELECT id, email, name, tier, password_hash, created_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.SubscriptionTier,
		&a.PasswordHash,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}
	return &a, nil
}
