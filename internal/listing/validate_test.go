package listing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/campus-market/internal/apperror"
	"github.com/sakif/campus-market/internal/model"
)

func validHousingFields() Fields {
	f := DefaultFields()
	f.Title = "1BR Apartment near RIT"
	f.Description = "Sunny, furnished, close to the bus."
	f.Price = "800"
	f.Location = "Park Point"
	f.Bedrooms = "1"
	f.Bathrooms = "1.5"
	f.AvailableFrom = "2026-01-01"
	return f
}

func validMarketplaceFields() Fields {
	f := DefaultFields()
	f.Title = "MacBook Pro 2021"
	f.Description = "Barely used."
	f.Price = "100.50"
	f.Category = "electronics"
	f.Condition = "like-new"
	return f
}

// fieldErrors asserts err is a ValidationErrors and returns its field map.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, apperror.ErrValidation), "want ErrValidation, got %v", err)
	var verrs apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	return verrs.Fields()
}

func TestAssemble_Housing(t *testing.T) {
	f := validHousingFields()
	f.Gender = "female"
	f.AvailableTo = "2026-05-31"
	f.Category = "furniture" // stale marketplace value, must be ignored

	d, err := Assemble(model.KindHousing, f)
	require.NoError(t, err)

	h, ok := d.(*model.HousingDraft)
	require.True(t, ok, "want *HousingDraft, got %T", d)
	assert.Equal(t, "1BR Apartment near RIT", h.Title)
	assert.True(t, decimal.NewFromInt(800).Equal(h.Price))
	assert.Equal(t, 1, h.Bedrooms)
	assert.Equal(t, 1.5, h.Bathrooms)
	assert.Equal(t, model.GenderFemale, h.Gender)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), h.AvailableFrom)
	require.NotNil(t, h.AvailableTo)
	assert.Equal(t, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), *h.AvailableTo)
}

func TestAssemble_HousingDefaults(t *testing.T) {
	f := validHousingFields()
	f.Gender = ""

	d, err := Assemble(model.KindHousing, f)
	require.NoError(t, err)
	h := d.(*model.HousingDraft)
	assert.Equal(t, model.GenderAny, h.Gender, "blank gender means any")
	assert.Nil(t, h.AvailableTo, "end date is optional")
}

func TestAssemble_Marketplace(t *testing.T) {
	f := validMarketplaceFields()
	f.Location = "stale housing value"

	d, err := Assemble(model.KindMarketplace, f)
	require.NoError(t, err)

	m, ok := d.(*model.MarketplaceDraft)
	require.True(t, ok, "want *MarketplaceDraft, got %T", d)
	assert.Equal(t, model.CategoryElectronics, m.Category)
	assert.Equal(t, model.ConditionLikeNew, m.Condition)
	assert.Equal(t, "100.5", m.Price.String())
}

func TestAssemble_TrimsText(t *testing.T) {
	f := validMarketplaceFields()
	f.Title = "  Desk  "
	d, err := Assemble(model.KindMarketplace, f)
	require.NoError(t, err)
	assert.Equal(t, "Desk", d.Common().Title)
}

func TestAssemble_EmptyFormReportsEveryRequiredField(t *testing.T) {
	fields := fieldErrors(t, func() error {
		_, err := Assemble(model.KindHousing, DefaultFields())
		return err
	}())

	for _, name := range []string{"title", "description", "price", "location", "bedrooms", "bathrooms", "availableFrom"} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "availableTo")
	assert.NotContains(t, fields, "category", "marketplace fields are not required for housing")

	fields = fieldErrors(t, func() error {
		_, err := Assemble(model.KindMarketplace, DefaultFields())
		return err
	}())
	for _, name := range []string{"title", "description", "price", "category", "condition"} {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, fields, "location")
}

func TestAssemble_FieldRules(t *testing.T) {
	cases := []struct {
		name  string
		kind  model.Kind
		edit  func(*Fields)
		field string
	}{
		{"blank title", model.KindHousing, func(f *Fields) { f.Title = "   " }, "title"},
		{"negative price", model.KindHousing, func(f *Fields) { f.Price = "-1" }, "price"},
		{"three decimals", model.KindMarketplace, func(f *Fields) { f.Price = "9.999" }, "price"},
		{"price not a number", model.KindMarketplace, func(f *Fields) { f.Price = "cheap" }, "price"},
		{"negative bedrooms", model.KindHousing, func(f *Fields) { f.Bedrooms = "-1" }, "bedrooms"},
		{"fractional bedrooms", model.KindHousing, func(f *Fields) { f.Bedrooms = "1.5" }, "bedrooms"},
		{"quarter bathroom", model.KindHousing, func(f *Fields) { f.Bathrooms = "1.25" }, "bathrooms"},
		{"negative bathrooms", model.KindHousing, func(f *Fields) { f.Bathrooms = "-0.5" }, "bathrooms"},
		{"bathrooms NaN", model.KindHousing, func(f *Fields) { f.Bathrooms = "NaN" }, "bathrooms"},
		{"unknown gender", model.KindHousing, func(f *Fields) { f.Gender = "robot" }, "gender"},
		{"bad start date", model.KindHousing, func(f *Fields) { f.AvailableFrom = "01/02/2026" }, "availableFrom"},
		{"bad end date", model.KindHousing, func(f *Fields) { f.AvailableTo = "soon" }, "availableTo"},
		{"end before start", model.KindHousing, func(f *Fields) { f.AvailableTo = "2025-12-31" }, "availableTo"},
		{"unknown category", model.KindMarketplace, func(f *Fields) { f.Category = "cars" }, "category"},
		{"unknown condition", model.KindMarketplace, func(f *Fields) { f.Condition = "mint" }, "condition"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validHousingFields()
			if tc.kind == model.KindMarketplace {
				f = validMarketplaceFields()
			}
			tc.edit(&f)

			_, err := Assemble(tc.kind, f)
			fields := fieldErrors(t, err)
			assert.Contains(t, fields, tc.field)
			assert.Len(t, fields, 1, "only the edited field should fail: %v", fields)
		})
	}
}

func TestAssemble_ValidEdgeValues(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Fields)
	}{
		{"zero price", func(f *Fields) { f.Price = "0" }},
		{"two decimals", func(f *Fields) { f.Price = "0.99" }},
		{"trailing zero", func(f *Fields) { f.Price = "12.500" }},
		{"zero bedrooms", func(f *Fields) { f.Bedrooms = "0" }},
		{"half bathroom", func(f *Fields) { f.Bathrooms = "0.5" }},
		{"same-day end", func(f *Fields) { f.AvailableTo = f.AvailableFrom }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validHousingFields()
			tc.edit(&f)
			_, err := Assemble(model.KindHousing, f)
			assert.NoError(t, err)
		})
	}
}

func TestAssemble_UnknownKind(t *testing.T) {
	_, err := Assemble(model.Kind("vehicle"), validHousingFields())
	assert.Contains(t, fieldErrors(t, err), "kind")
}

func TestValidateDraft(t *testing.T) {
	ok := &model.MarketplaceDraft{
		CommonFields: model.CommonFields{Title: "Lamp", Description: "Bright", Price: decimal.RequireFromString("5")},
		Category:     model.CategoryFurniture,
		Condition:    model.ConditionGood,
	}
	assert.NoError(t, ValidateDraft(ok))

	bad := &model.HousingDraft{
		CommonFields: model.CommonFields{Title: "Room", Description: "Nice", Price: decimal.RequireFromString("-3")},
		Location:     "Downtown",
		Gender:       model.GenderAny,
	}
	fields := fieldErrors(t, ValidateDraft(bad))
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "availableFrom")
}
