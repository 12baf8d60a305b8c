package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/campus-market/internal/apperror"
)

// DateLayout is the calendar-date format used on the wire and in form input.
const DateLayout = "2006-01-02"

// CommonFields are shared by every listing kind.
type CommonFields struct {
	Title       string
	Description string
	Price       decimal.Decimal
}

// ListingDraft is a fully assembled, validated listing waiting to be created.
//
// TAGGED UNION:
// Go has no sum types, so the union is an interface with an unexported
// method. Only this package can implement it, which closes the set to
// *HousingDraft and *MarketplaceDraft. Code that needs kind-specific fields
// does a type switch:
//
//	switch d := draft.(type) {
//	case *model.HousingDraft:     use(d.Location)
//	case *model.MarketplaceDraft: use(d.Category)
//	}
//
// A housing draft simply has no Category field, so it cannot be read or
// written by mistake.
type ListingDraft interface {
	Kind() Kind
	Common() CommonFields
	isListingDraft()
}

type HousingDraft struct {
	CommonFields
	Location      string
	Bedrooms      int
	Bathrooms     float64
	Gender        GenderPreference
	AvailableFrom time.Time
	AvailableTo   *time.Time // optional
}

func (*HousingDraft) Kind() Kind { return KindHousing }
func (d *HousingDraft) Common() CommonFields { return d.CommonFields }
func (*HousingDraft) isListingDraft() {}

type MarketplaceDraft struct {
	CommonFields
	Category  Category
	Condition Condition
}

func (*MarketplaceDraft) Kind() Kind { return KindMarketplace }
func (d *MarketplaceDraft) Common() CommonFields { return d.CommonFields }
func (*MarketplaceDraft) isListingDraft() {}

// NewListing flattens a draft into the catalog row shape. ID and
// timestamps are left for the repository to fill in.
func NewListing(d ListingDraft, ownerID string) *Listing {
	c := d.Common()
	l := &Listing{
		OwnerID:     ownerID,
		Kind:        d.Kind(),
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
	}

	switch v := d.(type) {
	case *HousingDraft:
		from := v.AvailableFrom
		l.Location = &v.Location
		l.Bedrooms = &v.Bedrooms
		l.Bathrooms = &v.Bathrooms
		l.Gender = &v.Gender
		l.AvailableFrom = &from
		l.AvailableTo = v.AvailableTo
	case *MarketplaceDraft:
		l.Category = &v.Category
		l.Condition = &v.Condition
	}
	return l
}

// draftWire is the JSON form of a draft. It is flat with a "kind"
// discriminator because that is what a JSON client can produce; decoding
// turns it back into the typed variant and drops the other kind's fields.
type draftWire struct {
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`

	Location      string           `json:"location,omitempty"`
	Bedrooms      *int             `json:"bedrooms,omitempty"`
	Bathrooms     *float64         `json:"bathrooms,omitempty"`
	Gender        GenderPreference `json:"gender,omitempty"`
	AvailableFrom string           `json:"availableFrom,omitempty"`
	AvailableTo   string           `json:"availableTo,omitempty"`

	Category  Category  `json:"category,omitempty"`
	Condition Condition `json:"condition,omitempty"`
}

// EncodeDraft marshals a draft to its JSON wire form.
func EncodeDraft(d ListingDraft) ([]byte, error) {
	c := d.Common()
	w := draftWire{
		Kind:        d.Kind(),
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
	}

	switch v := d.(type) {
	case *HousingDraft:
		w.Location = v.Location
		w.Bedrooms = &v.Bedrooms
		w.Bathrooms = &v.Bathrooms
		w.Gender = v.Gender
		w.AvailableFrom = v.AvailableFrom.Format(DateLayout)
		if v.AvailableTo != nil {
			w.AvailableTo = v.AvailableTo.Format(DateLayout)
		}
	case *MarketplaceDraft:
		w.Category = v.Category
		w.Condition = v.Condition
	default:
		return nil, fmt.Errorf("model: unknown draft type %T", d)
	}

	return json.Marshal(w)
}

// DecodeDraft parses the JSON wire form back into a typed draft. It checks
// shape only (known kind, parseable dates, counts present); business rules
// such as "price must not be negative" belong to the caller's validation.
// Absent counts come back as apperror.ValidationErrors. An absent gender
// means "any", as it does on the form.
func DecodeDraft(data []byte) (ListingDraft, error) {
	var w draftWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("model: decoding draft: %w", err)
	}

	common := CommonFields{Title: w.Title, Description: w.Description, Price: w.Price}

	switch w.Kind {
	case KindHousing:
		d := &HousingDraft{
			CommonFields: common,
			Location:     w.Location,
			Gender:       w.Gender,
		}
		if d.Gender == "" {
			d.Gender = GenderAny
		}

		// A missing count is not the same as zero bedrooms.
		var missing apperror.ValidationErrors
		if w.Bedrooms == nil {
			missing.Add("bedrooms", "bedrooms is required")
		} else {
			d.Bedrooms = *w.Bedrooms
		}
		if w.Bathrooms == nil {
			missing.Add("bathrooms", "bathrooms is required")
		} else {
			d.Bathrooms = *w.Bathrooms
		}
		if err := missing.OrNil(); err != nil {
			return nil, err
		}
		from, err := time.Parse(DateLayout, w.AvailableFrom)
		if err != nil {
			return nil, fmt.Errorf("model: decoding availableFrom: %w", err)
		}
		d.AvailableFrom = from
		if w.AvailableTo != "" {
			to, err := time.Parse(DateLayout, w.AvailableTo)
			if err != nil {
				return nil, fmt.Errorf("model: decoding availableTo: %w", err)
			}
			d.AvailableTo = &to
		}
		return d, nil

	case KindMarketplace:
		return &MarketplaceDraft{
			CommonFields: common,
			Category:     w.Category,
			Condition:    w.Condition,
		}, nil

	default:
		return nil, fmt.Errorf("model: unknown listing kind %q", w.Kind)
	}
}
