package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/repository"
	"github.com/sakif/campus-market/internal/service"
)

// Collection is the host's view of the catalog: the newest page of
// listings, re-read whenever a dialog reports a created listing.
//
// Revision increases on every refresh, including refreshes that find
// nothing new (the simulated submitter stores nothing), so a client can
// tell its list is stale by comparing revisions.
type Collection struct {
	listings *service.ListingService
	logger   *slog.Logger

	mu          sync.RWMutex
	items       []model.Listing
	revision    int64
	refreshedAt time.Time
}

func NewCollection(listings *service.ListingService, logger *slog.Logger) *Collection {
	return &Collection{listings: listings, logger: logger, items: []model.Listing{}}
}

// Refresh re-reads the newest page. On error the previous page is kept.
func (c *Collection) Refresh(ctx context.Context) error {
	items, err := c.listings.List(ctx, repository.ListOptions{})
	if err != nil {
		c.logger.Error("refreshing listing collection", slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	c.items = items
	c.revision++
	c.refreshedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// CollectionView is the response body of GET /api/listings.
type CollectionView struct {
	Revision    int64           `json:"revision"`
	RefreshedAt time.Time       `json:"refreshedAt"`
	Listings    []model.Listing `json:"listings"`
}

func (c *Collection) View() CollectionView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CollectionView{Revision: c.revision, RefreshedAt: c.refreshedAt, Listings: c.items}
}

// ListingHandler serves the catalog read endpoints.
type ListingHandler struct {
	listings   *service.ListingService
	collection *Collection
	logger     *slog.Logger
}

func NewListingHandler(listings *service.ListingService, collection *Collection, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, collection: collection, logger: logger}
}

// HandleList returns listings.
//
// HTTP: GET /api/listings[?kind=housing&limit=20&offset=0]
//
// Without query parameters this is the host's collection as last
// refreshed. With any of them it is a direct catalog query, and revision
// is that of the collection at the time.
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if len(q) == 0 {
		writeJSON(w, http.StatusOK, h.collection.View())
		return
	}

	opts := repository.ListOptions{Kind: model.Kind(q.Get("kind"))}
	var err error
	if opts.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		writeError(w, err)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		writeError(w, err)
		return
	}

	items, err := h.listings.List(r.Context(), opts)
	if err != nil {
		h.logger.Warn("listing query failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	view := h.collection.View()
	writeJSON(w, http.StatusOK, CollectionView{
		Revision:    view.Revision,
		RefreshedAt: view.RefreshedAt,
		Listings:    items,
	})
}

// HandleGet returns one listing.
//
// HTTP: GET /api/listings/{id}
func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be a whole number")
	}
	return n, nil
}
