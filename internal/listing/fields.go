// Package listing implements the create-listing form: raw field values,
// validation into a typed draft, and the Idle/Submitting state machine that
// hands the draft to a Submitter.
//
// LIFECYCLE OF A FORM:
//
//	NewForm          → Idle, default fields, kind housing
//	Edit / SetKind   → mutate fields (rejected while Submitting)
//	Submit           → validate → Submitting → Submitter.CreateListing → Idle
//	                   success: notify, reset, OnClose, OnListingCreated
//	                   failure: notify, fields kept for a retry
//	Cancel           → reset, OnClose
//
// A form lives for one dialog session. Nothing here is persisted.
package listing

import "github.com/sakif/campus-market/internal/model"

// Fields are the raw input values, kept as strings exactly as a user typed
// them. Parsing and range checks happen in Assemble, not on every edit, so a
// half-typed price like "12." is a valid intermediate state.
//
// Both kinds' fields live side by side. Switching kind leaves the other
// kind's values in place (switching back restores them) but Assemble only
// ever reads the active kind's fields, so stale values never reach a draft.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`

	// Housing
	Location      string `json:"location"`
	Bedrooms      string `json:"bedrooms"`
	Bathrooms     string `json:"bathrooms"`
	Gender        string `json:"gender"`
	AvailableFrom string `json:"availableFrom"`
	AvailableTo   string `json:"availableTo"`

	// Marketplace
	Category  string `json:"category"`
	Condition string `json:"condition"`
}

// DefaultFields is the state of a freshly opened (or reset) form: every
// field empty except gender, which defaults to "any". Category and
// condition have no default; the user must pick one.
func DefaultFields() Fields {
	return Fields{Gender: string(model.GenderAny)}
}

// Patch is a partial update. Nil pointers leave the field unchanged, which
// lets an HTTP client send only what the user touched.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`

	Location      *string `json:"location,omitempty"`
	Bedrooms      *string `json:"bedrooms,omitempty"`
	Bathrooms     *string `json:"bathrooms,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	AvailableFrom *string `json:"availableFrom,omitempty"`
	AvailableTo   *string `json:"availableTo,omitempty"`

	Category  *string `json:"category,omitempty"`
	Condition *string `json:"condition,omitempty"`
}

// Apply copies every set field of p onto f.
func (p Patch) Apply(f *Fields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Title, p.Title)
	set(&f.Description, p.Description)
	set(&f.Price, p.Price)
	set(&f.Location, p.Location)
	set(&f.Bedrooms, p.Bedrooms)
	set(&f.Bathrooms, p.Bathrooms)
	set(&f.Gender, p.Gender)
	set(&f.AvailableFrom, p.AvailableFrom)
	set(&f.AvailableTo, p.AvailableTo)
	set(&f.Category, p.Category)
	set(&f.Condition, p.Condition)
}
