package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two listing variants.
type Kind string

const (
	KindHousing     Kind = "housing"
	KindMarketplace Kind = "marketplace"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindHousing || k == KindMarketplace
}

// GenderPreference is the housing roommate preference.
type GenderPreference string

const (
	GenderAny    GenderPreference = "any"
	GenderMale   GenderPreference = "male"
	GenderFemale GenderPreference = "female"
)

// Category is the marketplace item category.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryTextbooks   Category = "textbooks"
	CategoryClothing    Category = "clothing"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

// Condition is the marketplace item condition.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// ENUM LOOKUP TABLES:
// Go has no enum keyword, so each enumeration is a typed string plus a set
// of allowed values. Parsing goes through these maps instead of a switch so
// the list of values lives in exactly one place.
var (
	genders = map[GenderPreference]struct{}{
		GenderAny: {}, GenderMale: {}, GenderFemale: {},
	}
	categories = map[Category]struct{}{
		CategoryElectronics: {}, CategoryFurniture: {}, CategoryTextbooks: {},
		CategoryClothing: {}, CategorySports: {}, CategoryOther: {},
	}
	conditions = map[Condition]struct{}{
		ConditionNew: {}, ConditionLikeNew: {}, ConditionGood: {},
		ConditionFair: {}, ConditionPoor: {},
	}
)

func ParseGender(s string) (GenderPreference, bool) {
	g := GenderPreference(s)
	_, ok := genders[g]
	return g, ok
}

func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := categories[c]
	return c, ok
}

func ParseCondition(s string) (Condition, bool) {
	c := Condition(s)
	_, ok := conditions[c]
	return c, ok
}

// Listing is a created listing as the catalog stores it.
//
// Unlike ListingDraft this is a flat row: the kind-specific columns are
// pointers and only the ones belonging to Kind are set. That is the shape a
// SQL table wants; code that builds listings goes through the typed drafts.
type Listing struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId,omitempty"`
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`

	// Housing-only
	Location      *string           `json:"location,omitempty"`
	Bedrooms      *int              `json:"bedrooms,omitempty"`
	Bathrooms     *float64          `json:"bathrooms,omitempty"`
	Gender        *GenderPreference `json:"gender,omitempty"`
	AvailableFrom *time.Time        `json:"availableFrom,omitempty"`
	AvailableTo   *time.Time        `json:"availableTo,omitempty"`

	// Marketplace-only
	Category  *Category  `json:"category,omitempty"`
	Condition *Condition `json:"condition,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
