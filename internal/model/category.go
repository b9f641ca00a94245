package model

import "github.com/rotisserie/eris"

// Category names one of the five coded dimensions of an observation.
type Category string

const (
	CategoryAgeGroup Category = "agegroup"
	CategorySex      Category = "sex"
	CategoryRace     Category = "race"
	CategoryHisp     Category = "hisp"
	CategoryState    Category = "state"
)

// AllCategories returns the categories in dashboard display order.
func AllCategories() []Category {
	return []Category{CategoryState, CategoryAgeGroup, CategoryRace, CategorySex, CategoryHisp}
}

// ParseCategory converts a metadata_table grp_category value into a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryAgeGroup, CategorySex, CategoryRace, CategoryHisp, CategoryState:
		return c, nil
	default:
		return "", eris.Errorf("unknown category: %q (valid: agegroup, sex, race, hisp, state)", s)
	}
}

// CategoryEntry is one row of metadata_table: a code and its label within a category.
// Code 0 denotes the All/Both aggregate.
type CategoryEntry struct {
	Category Category `json:"grp_category"`
	Code     int      `json:"grp_name"`
	Label    string   `json:"grp_desc"`
}
