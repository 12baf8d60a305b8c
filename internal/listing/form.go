package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
	"github.com/sakif/campus-market/internal/notify"
)

// State is where the form is in its submit cycle.
type State int

const (
	// Idle: editable, submit and cancel enabled.
	Idle State = iota
	// Submitting: one create call is outstanding; every input, submit and
	// cancel are disabled until it settles.
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "submitting":
		*s = Submitting
	default:
		return fmt.Errorf("listing: unknown state %q", b)
	}
	return nil
}

// User-facing notification texts.
const (
	MsgCreated      = "Listing created successfully!"
	MsgCreateFailed = "Failed to create listing"
)

var (
	// ErrLocked is returned by edits, kind switches and Cancel while a
	// submission is in flight.
	ErrLocked = apperror.Conflict("form", "the form is locked while a submission is in flight")

	// ErrSubmitInFlight is returned by Submit while another submission is
	// outstanding. The second call has no effect.
	ErrSubmitInFlight = apperror.Conflict("form", "a submission is already in flight")
)

// Deps are the collaborators a form talks to. Submitter is required; the
// rest may be nil.
type Deps struct {
	Submitter   Submitter
	Credentials CredentialSource
	Notifier    notify.Notifier
	Logger      *slog.Logger
}

// Callbacks into the host. OnClose dismisses the dialog (cancel or
// success); OnListingCreated runs only on success, after OnClose, so the
// host can refresh the collection it owns.
type Callbacks struct {
	OnClose          func()
	OnListingCreated func()
}

// Form is one create-listing dialog's state. It is safe for concurrent use;
// at most one submission is in flight at a time.
type Form struct {
	submitter   Submitter
	credentials CredentialSource
	notifier    notify.Notifier
	logger      *slog.Logger
	callbacks   Callbacks

	mu     sync.Mutex
	state  State
	kind   model.Kind
	fields Fields
}

// NewForm opens a form in Idle with default fields and the housing kind.
func NewForm(deps Deps, cb Callbacks) *Form {
	if deps.Submitter == nil {
		panic("listing: NewForm requires a Submitter")
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Multi{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{
		submitter:   deps.Submitter,
		credentials: deps.Credentials,
		notifier:    notifier,
		logger:      logger,
		callbacks:   cb,
		kind:        model.KindHousing,
		fields:      DefaultFields(),
	}
}

// Snapshot is a consistent copy of the form's observable state.
type Snapshot struct {
	State  State      `json:"state"`
	Kind   model.Kind `json:"kind"`
	Fields Fields     `json:"fields"`
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{State: f.state, Kind: f.kind, Fields: f.fields}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Kind() model.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kind
}

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetKind switches the active kind. No field is cleared.
func (f *Form) SetKind(kind model.Kind) error {
	if !kind.Valid() {
		return apperror.ValidationFailed("kind", "listing kind must be housing or marketplace")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return ErrLocked
	}
	f.kind = kind
	return nil
}

// Edit applies fn to the field values.
func (f *Form) Edit(fn func(*Fields)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return ErrLocked
	}
	fn(&f.fields)
	return nil
}

// Apply is Edit with a partial update.
func (f *Form) Apply(p Patch) error {
	return f.Edit(p.Apply)
}

// Validate reports what Submit would reject, without submitting.
func (f *Form) Validate() error {
	f.mu.Lock()
	kind, fields := f.kind, f.fields
	f.mu.Unlock()

	_, err := Assemble(kind, fields)
	return err
}

// Submit validates the draft and, when it is valid, creates it through the
// submitter.
//
// Outcomes:
//   - another submission in flight: ErrSubmitInFlight, nothing else happens
//   - invalid draft: apperror.ValidationErrors, still Idle, nothing sent
//   - create succeeded: success notification, fields reset, OnClose then
//     OnListingCreated, returns nil
//   - create failed: error notification carrying the failure's message,
//     fields untouched, the failure is returned
//
// The form is back in Idle before any notification or callback runs.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	draft, err := Assemble(f.kind, f.fields)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = Submitting
	f.mu.Unlock()

	var credential string
	if f.credentials != nil {
		credential, _ = f.credentials.AccessToken()
	}

	f.logger.Debug("submitting listing", slog.String("kind", string(draft.Kind())))

	createErr := f.create(ctx, draft, credential)

	if createErr != nil {
		f.logger.Warn("listing creation failed",
			slog.String("kind", string(draft.Kind())),
			slog.String("error", createErr.Error()),
		)
		f.notifier.Notify(ctx, notify.Error, failureMessage(createErr))
		return fmt.Errorf("listing: creating listing: %w", createErr)
	}

	f.logger.Info("listing created", slog.String("kind", string(draft.Kind())))
	f.notifier.Notify(ctx, notify.Success, MsgCreated)
	if f.callbacks.OnClose != nil {
		f.callbacks.OnClose()
	}
	if f.callbacks.OnListingCreated != nil {
		f.callbacks.OnListingCreated()
	}
	return nil
}

// create runs the submitter and always returns the form to Idle, even if
// the submitter panics. Fields are reset only on success.
func (f *Form) create(ctx context.Context, draft model.ListingDraft, credential string) (err error) {
	succeeded := false
	defer func() {
		f.mu.Lock()
		f.state = Idle
		if succeeded {
			f.fields = DefaultFields()
		}
		f.mu.Unlock()
	}()

	err = f.submitter.CreateListing(ctx, draft, credential)
	succeeded = err == nil
	return err
}

// Cancel discards the draft and dismisses the dialog. It is disabled while
// a submission is in flight.
func (f *Form) Cancel() error {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return ErrLocked
	}
	f.fields = DefaultFields()
	f.mu.Unlock()

	if f.callbacks.OnClose != nil {
		f.callbacks.OnClose()
	}
	return nil
}

// failureMessage picks the text shown for a failed create. Only AppError
// and ValidationErrors messages are user-facing; anything else gets the
// generic message and its text goes to the log only.
func failureMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	var fields apperror.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fields.Error()
	}
	return MsgCreateFailed
}
