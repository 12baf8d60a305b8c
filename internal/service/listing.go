// Package service contains the business logic layer.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services take repository interfaces, not *sqlite.DB, so tests pass
// hand-written fakes (see listing_test.go) and nothing here imports SQL.
//
// THE DEPENDENCY CHAIN:
//
//	server.New creates: DB → Repository → Service → Handler
//	At runtime:         Handler calls Service calls Repository calls DB
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/auth"
	"github.com/sakif/campus-market/internal/listing"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListingService is the reference listing backend: it re-validates a draft
// and stores it in the catalog.
//
// It doubles as a listing.Submitter, so a form can write straight into the
// catalog in-process. Over HTTP the same logic is reached through
// POST /api/backend/listings, which is what listing.HTTPSubmitter calls.
type ListingService struct {
	repo   repository.ListingRepository
	tokens *auth.TokenService // nil: credentials are not checked
	logger *slog.Logger
}

var _ listing.Submitter = (*ListingService)(nil)

// NewListingService wires the service. tokens may be nil, in which case
// the credential passed to CreateListing is ignored and listings are
// stored without an owner.
func NewListingService(repo repository.ListingRepository, tokens *auth.TokenService, logger *slog.Logger) *ListingService {
	return &ListingService{repo: repo, tokens: tokens, logger: logger}
}

// CreateListing implements listing.Submitter.
//
// An empty credential is accepted and produces an ownerless listing: the
// session may legitimately hold none. A credential that is present but
// does not validate is rejected with apperror.ErrUnauthorized.
func (s *ListingService) CreateListing(ctx context.Context, draft model.ListingDraft, credential string) error {
	var ownerID string
	if credential != "" && s.tokens != nil {
		id, err := s.tokens.Validate(credential)
		if err != nil {
			s.logger.Warn("rejected listing credential", slog.String("error", err.Error()))
			return apperror.Unauthorized("your session has expired, sign in again")
		}
		ownerID = id.UserID
	}

	_, err := s.Create(ctx, draft, ownerID)
	return err
}

// Create validates draft and stores it under ownerID (empty: no owner).
//
// The form already validated the draft, but a backend never trusts its
// client: drafts arriving over HTTP were decoded from JSON and have been
// checked for shape only.
func (s *ListingService) Create(ctx context.Context, draft model.ListingDraft, ownerID string) (*model.Listing, error) {
	if draft == nil {
		return nil, apperror.ValidationFailed("kind", "listing kind must be housing or marketplace")
	}
	if err := listing.ValidateDraft(draft); err != nil {
		return nil, err
	}

	l := model.NewListing(draft, ownerID)
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("service: creating listing: %w", err)
	}

	s.logger.Info("listing stored",
		slog.String("id", l.ID),
		slog.String("kind", string(l.Kind)),
		slog.String("ownerID", l.OwnerID),
	)
	return l, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: getting listing: %w", err)
	}
	return l, nil
}

// List returns a page of listings, newest first. An unknown kind filter is
// a validation error rather than an empty page.
func (s *ListingService) List(ctx context.Context, opts repository.ListOptions) ([]model.Listing, error) {
	if opts.Kind != "" && !opts.Kind.Valid() {
		return nil, apperror.ValidationFailed("kind", "kind must be housing or marketplace")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	listings, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service: listing listings: %w", err)
	}
	return listings, nil
}
