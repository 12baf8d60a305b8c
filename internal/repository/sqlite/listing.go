package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/repository"
)

var _ repository.ListingRepository = (*DB)(nil)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const listingColumns = `id, owner_id, kind, title, description, price,
	location, bedrooms, bathrooms, gender, available_from, available_to,
	category, condition, created_at, updated_at`

// Create inserts a listing and fills in its ID and timestamps.
//
// NULLABLE COLUMNS:
// The model keeps kind-specific fields as pointers. A nil pointer passed to
// ExecContext is stored as NULL, so the housing columns of a marketplace
// row (and the other way round) come out empty without any branching here.
func (db *DB) Create(ctx context.Context, l *model.Listing) error {
	l.ID = xid.New().String()
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO listings (`+listingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		nullString(l.OwnerID),
		l.Kind,
		l.Title,
		l.Description,
		l.Price.String(),
		l.Location,
		l.Bedrooms,
		l.Bathrooms,
		l.Gender,
		formatDate(l.AvailableFrom),
		formatDate(l.AvailableTo),
		l.Category,
		l.Condition,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating listing: %w", err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound when no listing has that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("listing", id)
		}
		return nil, fmt.Errorf("sqlite: getting listing %s: %w", id, err)
	}
	return l, nil
}

// List returns listings newest first, optionally filtered by kind.
// Limit is clamped to [1, 100] and defaults to 20.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Listing, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(opts.Offset, 0)

	// xid sorts by creation time, so id breaks created_at ties in the same
	// order rows were inserted.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listingColumns+`
		 FROM listings
		 WHERE (? = '' OR kind = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Kind, opts.Kind, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing listings: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating listings: %w", err)
	}
	return listings, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (*model.Listing, error) {
	var (
		l                   model.Listing
		owner               sql.NullString
		price               string
		location            sql.NullString
		bedrooms            sql.NullInt64
		bathrooms           sql.NullFloat64
		gender              sql.NullString
		availFrom, availTo  sql.NullString
		category, condition sql.NullString
	)

	err := s.Scan(
		&l.ID, &owner, &l.Kind, &l.Title, &l.Description, &price,
		&location, &bedrooms, &bathrooms, &gender, &availFrom, &availTo,
		&category, &condition, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.OwnerID = owner.String
	if err := l.Price.UnmarshalText([]byte(price)); err != nil {
		return nil, fmt.Errorf("parsing price %q: %w", price, err)
	}
	if location.Valid {
		l.Location = &location.String
	}
	if bedrooms.Valid {
		n := int(bedrooms.Int64)
		l.Bedrooms = &n
	}
	if bathrooms.Valid {
		l.Bathrooms = &bathrooms.Float64
	}
	if gender.Valid {
		g := model.GenderPreference(gender.String)
		l.Gender = &g
	}
	if l.AvailableFrom, err = parseDate(availFrom); err != nil {
		return nil, err
	}
	if l.AvailableTo, err = parseDate(availTo); err != nil {
		return nil, err
	}
	if category.Valid {
		c := model.Category(category.String)
		l.Category = &c
	}
	if condition.Valid {
		c := model.Condition(condition.String)
		l.Condition = &c
	}
	return &l, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Dates are stored as plain "2006-01-02" text; they are calendar days, not
// instants, and must not pick up a time zone on the way through.
func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", s.String, err)
	}
	return &t, nil
}
