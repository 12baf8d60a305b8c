package listing

import (
	"context"
	"time"

	"github.com/sakif/campus-market/internal/model"
)

// Submitter creates a listing from an assembled draft. It is the only thing
// the form knows about the backend: the simulated delay, an HTTP call and
// the in-process catalog service all sit behind this one method.
//
// Implementations must resolve to nil or to an error whose message is fit
// to show the user. credential is empty when the session holds none.
type Submitter interface {
	CreateListing(ctx context.Context, draft model.ListingDraft, credential string) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, draft model.ListingDraft, credential string) error

func (f SubmitterFunc) CreateListing(ctx context.Context, draft model.ListingDraft, credential string) error {
	return f(ctx, draft, credential)
}

// DefaultSimulatedDelay is how long SimulatedSubmitter pretends to work.
const DefaultSimulatedDelay = 500 * time.Millisecond

// SimulatedSubmitter waits and then succeeds without creating anything.
// It is the placeholder used until a real backend is configured.
type SimulatedSubmitter struct {
	Delay time.Duration
}

func (s SimulatedSubmitter) CreateListing(ctx context.Context, _ model.ListingDraft, _ string) error {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CredentialSource supplies the access credential at submit time. The
// session store implements it.
type CredentialSource interface {
	AccessToken() (string, bool)
}
