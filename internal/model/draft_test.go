package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/campus-market/internal/apperror"
)

func TestEncodeDecodeDraft_Housing(t *testing.T) {
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	in := &HousingDraft{
		CommonFields:  CommonFields{Title: "Room", Description: "Quiet", Price: decimal.RequireFromString("650.25")},
		Location:      "Riverknoll",
		Bedrooms:      2,
		Bathrooms:     1.5,
		Gender:        GenderFemale,
		AvailableFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   &to,
	}

	data, err := EncodeDraft(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"housing"`)
	assert.Contains(t, string(data), `"availableTo":"2026-05-31"`)
	assert.NotContains(t, string(data), "category")

	out, err := DecodeDraft(data)
	require.NoError(t, err)
	h, ok := out.(*HousingDraft)
	require.True(t, ok, "expected *HousingDraft, got %T", out)
	assert.True(t, in.Price.Equal(h.Price))
	assert.Equal(t, in.Location, h.Location)
	assert.Equal(t, in.Bedrooms, h.Bedrooms)
	assert.Equal(t, in.Bathrooms, h.Bathrooms)
	assert.Equal(t, in.Gender, h.Gender)
	assert.True(t, in.AvailableFrom.Equal(h.AvailableFrom))
	require.NotNil(t, h.AvailableTo)
	assert.True(t, to.Equal(*h.AvailableTo))
}

func TestDecodeDraft_DropsOtherKindsFields(t *testing.T) {
	raw := `{"kind":"marketplace","title":"Lamp","description":"Desk lamp","price":"15",
		"category":"furniture","condition":"good","location":"ignored","bedrooms":3}`

	out, err := DecodeDraft([]byte(raw))
	require.NoError(t, err)

	m, ok := out.(*MarketplaceDraft)
	require.True(t, ok)
	assert.Equal(t, KindMarketplace, m.Kind())
	assert.Equal(t, CategoryFurniture, m.Category)
	assert.Equal(t, ConditionGood, m.Condition)
	assert.Equal(t, "Lamp", m.Common().Title)
}

func TestDecodeDraft_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown kind":     `{"kind":"vehicle","title":"Car"}`,
		"missing kind":     `{"title":"Car"}`,
		"bad start date":   `{"kind":"housing","availableFrom":"January 1"}`,
		"bad end date":     `{"kind":"housing","availableFrom":"2026-01-01","availableTo":"soon"}`,
		"not json":         `kind=housing`,
		"price not number": `{"kind":"marketplace","price":"free"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDraft([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeDraft_HousingCountsRequired(t *testing.T) {
	raw := `{"kind":"housing","title":"Room","description":"d","price":"1",
		"location":"Park Point","availableFrom":"2026-01-01"}`

	_, err := DecodeDraft([]byte(raw))
	require.Error(t, err)

	var fields apperror.ValidationErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields.Fields(), "bedrooms")
	assert.Contains(t, fields.Fields(), "bathrooms")
}

func TestDecodeDraft_ZeroCountsAndBlankGender(t *testing.T) {
	raw := `{"kind":"housing","title":"Room","description":"d","price":"1",
		"location":"Park Point","bedrooms":0,"bathrooms":0,"availableFrom":"2026-01-01"}`

	out, err := DecodeDraft([]byte(raw))
	require.NoError(t, err)

	h, ok := out.(*HousingDraft)
	require.True(t, ok)
	assert.Zero(t, h.Bedrooms)
	assert.Zero(t, h.Bathrooms)
	assert.Equal(t, GenderAny, h.Gender)
}

func TestNewListing(t *testing.T) {
	t.Run("housing sets only housing columns", func(t *testing.T) {
		d := &HousingDraft{
			CommonFields:  CommonFields{Title: "Room", Price: decimal.NewFromInt(500)},
			Location:      "Perkins Green",
			Bedrooms:      1,
			Gender:        GenderAny,
			AvailableFrom: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		}
		l := NewListing(d, "owner-1")

		assert.Equal(t, KindHousing, l.Kind)
		assert.Equal(t, "owner-1", l.OwnerID)
		require.NotNil(t, l.Location)
		assert.Equal(t, "Perkins Green", *l.Location)
		assert.Nil(t, l.AvailableTo)
		assert.Nil(t, l.Category)
		assert.Nil(t, l.Condition)
	})

	t.Run("marketplace sets only marketplace columns", func(t *testing.T) {
		d := &MarketplaceDraft{
			CommonFields: CommonFields{Title: "Calculator", Price: decimal.NewFromInt(20)},
			Category:     CategoryElectronics,
			Condition:    ConditionFair,
		}
		l := NewListing(d, "")

		assert.Equal(t, KindMarketplace, l.Kind)
		require.NotNil(t, l.Category)
		assert.Equal(t, CategoryElectronics, *l.Category)
		assert.Nil(t, l.Location)
		assert.Nil(t, l.Bedrooms)
		assert.Nil(t, l.AvailableFrom)
	})
}

func TestParseEnums(t *testing.T) {
	_, ok := ParseCategory("textbooks")
	assert.True(t, ok)
	_, ok = ParseCategory("Textbooks")
	assert.False(t, ok, "values are case sensitive")
	_, ok = ParseCondition("like-new")
	assert.True(t, ok)
	_, ok = ParseGender("other")
	assert.False(t, ok)
	assert.False(t, Kind("").Valid())
}
