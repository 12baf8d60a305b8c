package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/listing"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/notify"
	"github.com/sakif/campus-market/internal/session"
)

// DefaultDialogTTL is how long an untouched dialog stays open.
const DefaultDialogTTL = 30 * time.Minute

// dialog is one open create-listing dialog: a form plus the queue its
// notifications land in until the client drains them.
type dialog struct {
	id     string
	form   *listing.Form
	queue  *notify.Queue
	closed atomic.Bool
}

// DialogView is what every dialog endpoint returns.
type DialogView struct {
	ID            string                `json:"id"`
	Open          bool                  `json:"open"`
	State         listing.State         `json:"state"`
	Kind          model.Kind            `json:"kind"`
	Fields        listing.Fields        `json:"fields"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// DialogConfig wires a DialogHandler.
type DialogConfig struct {
	Submitter listing.Submitter
	TTL       time.Duration

	// OnListingCreated runs after a dialog's listing was created, once the
	// dialog has closed. The host refreshes its collection here.
	OnListingCreated func(ctx context.Context)

	// OnOpen and OnClose track the number of open dialogs.
	OnOpen  func()
	OnClose func()
}

// DialogHandler hosts create-listing dialogs over HTTP.
//
// REGISTRY:
// Open dialogs live in a go-cache keyed by dialog ID. Every request touching
// a dialog re-arms its TTL, so only abandoned dialogs expire. A dialog that
// closes (cancel, or successful submit) is deleted at once; its final
// notifications ride along in the response that closed it.
type DialogHandler struct {
	cfg     DialogConfig
	dialogs *cache.Cache
	logger  *slog.Logger
}

func NewDialogHandler(cfg DialogConfig, logger *slog.Logger) *DialogHandler {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultDialogTTL
	}
	h := &DialogHandler{
		cfg:     cfg,
		dialogs: cache.New(cfg.TTL, cfg.TTL/2),
		logger:  logger,
	}
	h.dialogs.OnEvicted(func(id string, _ any) {
		if cfg.OnClose != nil {
			cfg.OnClose()
		}
		h.logger.Debug("dialog closed", slog.String("dialogID", id))
	})
	return h
}

// HandleOpen opens a dialog with a fresh form.
//
// HTTP: POST /api/dialogs
//
// The form reads its credential from the session store of the enclosing
// provider scope, so this must be mounted under session.Provider.
func (h *DialogHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	store, err := session.FromContext(r.Context())
	if err != nil {
		h.logger.Error("opening dialog", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	d := &dialog{id: xid.New().String(), queue: notify.NewQueue(notify.DefaultQueueSize)}
	logger := h.logger.With(slog.String("dialogID", d.id))

	d.form = listing.NewForm(listing.Deps{
		Submitter:   h.cfg.Submitter,
		Credentials: store,
		Notifier:    notify.Multi{d.queue, notify.NewLog(logger)},
		Logger:      logger,
	}, listing.Callbacks{
		OnClose: func() {
			d.closed.Store(true)
			h.dialogs.Delete(d.id)
		},
		OnListingCreated: func() {
			if h.cfg.OnListingCreated != nil {
				h.cfg.OnListingCreated(context.Background())
			}
		},
	})

	h.dialogs.SetDefault(d.id, d)
	if h.cfg.OnOpen != nil {
		h.cfg.OnOpen()
	}
	logger.Debug("dialog opened")

	writeJSON(w, http.StatusCreated, view(d, false))
}

// HandleGet returns the dialog's state and fields.
//
// HTTP: GET /api/dialogs/{id}
func (h *DialogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(d, false))
}

// HandleEditFields applies a partial update to the fields.
//
// HTTP: PATCH /api/dialogs/{id}/fields
// REQUEST BODY: {"title": "Desk", "price": "40"}   (any subset)
//
// 409 while a submission is in flight.
func (h *DialogHandler) HandleEditFields(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch listing.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if err := d.form.Apply(patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(d, false))
}

type kindRequest struct {
	Kind model.Kind `json:"kind"`
}

// HandleSetKind switches between housing and marketplace.
//
// HTTP: PUT /api/dialogs/{id}/kind
// REQUEST BODY: {"kind": "marketplace"}
func (h *DialogHandler) HandleSetKind(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req kindRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := d.form.SetKind(req.Kind); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(d, false))
}

// HandleSubmit validates and submits the draft. The request blocks until
// the submitter settles.
//
// HTTP: POST /api/dialogs/{id}/submit
//
// RESPONSES:
//   - 200, open=false: created; the dialog is gone, notifications attached
//   - 400 with fields: invalid draft, nothing sent
//   - 409: a submission for this dialog is already in flight
//   - 4xx/5xx per the failure: create failed, dialog still open with its
//     fields, the error notification waits in the queue
//
// A client that disconnects mid-submit does not cancel the create; the
// form gives in-flight submissions no way out.
func (h *DialogHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := d.form.Submit(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(d, true))
}

// HandleCancel discards the draft and closes the dialog.
//
// HTTP: POST /api/dialogs/{id}/cancel
func (h *DialogHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := d.form.Cancel(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(d, true))
}

// HandleNotifications drains the dialog's pending notifications.
//
// HTTP: GET /api/dialogs/{id}/notifications
func (h *DialogHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	d, err := h.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.queue.Drain())
}

// lookup finds the dialog named in the URL and re-arms its TTL.
func (h *DialogHandler) lookup(r *http.Request) (*dialog, error) {
	id := chi.URLParam(r, "id")
	v, ok := h.dialogs.Get(id)
	if !ok {
		return nil, apperror.NotFound("dialog", id)
	}
	d := v.(*dialog)
	// Replace only succeeds while the entry exists, so a dialog closed
	// concurrently is not resurrected.
	_ = h.dialogs.Replace(id, d, cache.DefaultExpiration)
	return d, nil
}

// Open reports how many dialogs are in the registry, expired ones included
// until the janitor removes them.
func (h *DialogHandler) Open() int {
	return h.dialogs.ItemCount()
}

func view(d *dialog, drain bool) DialogView {
	snap := d.form.Snapshot()
	v := DialogView{
		ID:     d.id,
		Open:   !d.closed.Load(),
		State:  snap.State,
		Kind:   snap.Kind,
		Fields: snap.Fields,
	}
	if drain {
		v.Notifications = d.queue.Drain()
	}
	return v
}
