package listing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
)

// PricePlaces is the number of decimal places a price may carry.
const PricePlaces = 2

// Assemble validates the active kind's fields and builds the typed draft.
//
// Every problem is reported at once as apperror.ValidationErrors keyed by
// field name, the way a form shows a message under each bad input. Fields
// that belong to the inactive kind are ignored entirely.
func Assemble(kind model.Kind, f Fields) (model.ListingDraft, error) {
	var errs apperror.ValidationErrors

	common := model.CommonFields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
	}
	if price, ok := parsePrice(f.Price, &errs); ok {
		common.Price = price
	}

	var draft model.ListingDraft
	switch kind {
	case model.KindHousing:
		h := &model.HousingDraft{
			CommonFields: common,
			Location:     strings.TrimSpace(f.Location),
			Gender:       model.GenderAny,
		}
		if n, ok := parseCount(f.Bedrooms, "bedrooms", &errs); ok {
			h.Bedrooms = n
		}
		if n, ok := parseNumber(f.Bathrooms, "bathrooms", &errs); ok {
			h.Bathrooms = n
		}
		if g := strings.TrimSpace(f.Gender); g != "" {
			h.Gender = model.GenderPreference(g)
		}
		if d, ok := parseDate(f.AvailableFrom, "availableFrom", true, &errs); ok {
			h.AvailableFrom = d
		}
		if d, ok := parseDate(f.AvailableTo, "availableTo", false, &errs); ok && !d.IsZero() {
			h.AvailableTo = &d
		}
		draft = h

	case model.KindMarketplace:
		draft = &model.MarketplaceDraft{
			CommonFields: common,
			Category:     model.Category(strings.TrimSpace(f.Category)),
			Condition:    model.Condition(strings.TrimSpace(f.Condition)),
		}

	default:
		errs.Add("kind", "listing kind must be housing or marketplace")
		return nil, errs
	}

	// Range and enum rules run on the typed draft. Fields that already
	// failed to parse are skipped so each gets one message.
	checkDraft(draft, &errs, errs.Fields())

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return draft, nil
}

// ValidateDraft applies the business rules to an already typed draft, for
// callers that receive one over the wire instead of assembling it.
func ValidateDraft(d model.ListingDraft) error {
	var errs apperror.ValidationErrors
	checkDraft(d, &errs, nil)
	return errs.OrNil()
}

func checkDraft(d model.ListingDraft, errs *apperror.ValidationErrors, skip map[string]string) {
	check := func(field string, bad bool, msg string) {
		if _, skipped := skip[field]; skipped {
			return
		}
		if bad {
			errs.Add(field, msg)
		}
	}

	c := d.Common()
	check("title", strings.TrimSpace(c.Title) == "", "title is required")
	check("description", strings.TrimSpace(c.Description) == "", "description is required")
	check("price", c.Price.IsNegative(), "price must not be negative")
	check("price", !c.Price.Equal(c.Price.Round(PricePlaces)), "price must have at most two decimal places")

	switch v := d.(type) {
	case *model.HousingDraft:
		_, genderOK := model.ParseGender(string(v.Gender))
		check("location", strings.TrimSpace(v.Location) == "", "location is required")
		check("bedrooms", v.Bedrooms < 0, "bedrooms must not be negative")
		check("bathrooms", v.Bathrooms < 0, "bathrooms must not be negative")
		check("bathrooms", !isHalfStep(v.Bathrooms), "bathrooms must be a multiple of 0.5")
		check("gender", !genderOK, "gender preference must be any, male or female")
		check("availableFrom", v.AvailableFrom.IsZero(), "available-from date is required")
		check("availableTo", v.AvailableTo != nil && !v.AvailableFrom.IsZero() && v.AvailableTo.Before(v.AvailableFrom),
			"available-to date must not be before available-from date")

	case *model.MarketplaceDraft:
		_, categoryOK := model.ParseCategory(string(v.Category))
		_, conditionOK := model.ParseCondition(string(v.Condition))
		check("category", v.Category == "", "category is required")
		check("category", v.Category != "" && !categoryOK, "category is not one of the allowed values")
		check("condition", v.Condition == "", "condition is required")
		check("condition", v.Condition != "" && !conditionOK, "condition is not one of the allowed values")
	}
}

func parsePrice(raw string, errs *apperror.ValidationErrors) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.Add("price", "price is required")
		return decimal.Zero, false
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add("price", "price must be a number")
		return decimal.Zero, false
	}
	return p, true
}

func parseCount(raw, field string, errs *apperror.ValidationErrors) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.Add(field, field+" is required")
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, field+" must be a whole number")
		return 0, false
	}
	return n, true
}

func parseNumber(raw, field string, errs *apperror.ValidationErrors) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.Add(field, field+" is required")
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		errs.Add(field, field+" must be a number")
		return 0, false
	}
	return n, true
}

// parseDate returns the zero time with ok=true for an empty optional date.
func parseDate(raw, field string, required bool, errs *apperror.ValidationErrors) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			errs.Add(field, "date is required")
			return time.Time{}, false
		}
		return time.Time{}, true
	}
	d, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		errs.Add(field, "date must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return d, true
}

func isHalfStep(n float64) bool {
	doubled := n * 2
	return doubled == math.Trunc(doubled)
}
