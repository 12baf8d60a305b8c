package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/auth"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/service"
)

// BackendHandler is the listing backend's HTTP face: the endpoint
// listing.HTTPSubmitter posts to. When the server issues credentials the
// route is mounted behind auth.RequireAuth and the listing is owned by the
// token's subject.
type BackendHandler struct {
	listings *service.ListingService
	logger   *slog.Logger
}

func NewBackendHandler(listings *service.ListingService, logger *slog.Logger) *BackendHandler {
	return &BackendHandler{listings: listings, logger: logger}
}

// HandleCreate stores a listing draft.
//
// HTTP: POST /api/backend/listings
// REQUEST BODY: the draft wire form, e.g.
//
//	{"kind":"marketplace","title":"Lamp","description":"...","price":"15",
//	 "category":"furniture","condition":"good"}
//
// RESPONSE: 201 with the stored listing.
func (h *BackendHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body too large"))
		return
	}

	draft, err := model.DecodeDraft(body)
	if err != nil {
		var fields apperror.ValidationErrors
		if !errors.As(err, &fields) {
			err = apperror.ValidationFailed("body", err.Error())
		}
		writeError(w, err)
		return
	}

	var ownerID string
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		ownerID = id.UserID
	}

	l, err := h.listings.Create(r.Context(), draft, ownerID)
	if err != nil {
		h.logger.Warn("backend create failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
