package labels

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/model"
)

// Mode selects how the year of a Selection is matched.
type Mode string

const (
	// ModePoint keeps rows whose year equals the selected year.
	ModePoint Mode = "point"
	// ModeCumulative keeps rows whose year is at or before the selected year.
	ModeCumulative Mode = "cumulative"
)

// ParseMode converts a query value into a Mode. Empty means ModePoint.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePoint:
		return ModePoint, nil
	case ModeCumulative:
		return ModeCumulative, nil
	default:
		return "", eris.Errorf("unknown mode: %q (valid: point, cumulative)", s)
	}
}

// Selection is a year plus one label set per category. An empty set
// selects every label of its category.
type Selection struct {
	Year      int      `json:"year"`
	States    []string `json:"state,omitempty"`
	AgeGroups []string `json:"agegroup,omitempty"`
	Races     []string `json:"race,omitempty"`
	Sexes     []string `json:"sex,omitempty"`
	Hisps     []string `json:"hisp,omitempty"`
}

// Labels returns the explicit label set for a category.
func (s Selection) Labels(c model.Category) []string {
	switch c {
	case model.CategoryState:
		return s.States
	case model.CategoryAgeGroup:
		return s.AgeGroups
	case model.CategoryRace:
		return s.Races
	case model.CategorySex:
		return s.Sexes
	case model.CategoryHisp:
		return s.Hisps
	}
	return nil
}

type activeSet map[string]bool

// active returns the label set in force for a category, falling back to
// every option when the selection is empty.
func (r *Resolver) active(sel Selection, c model.Category) activeSet {
	labels := sel.Labels(c)
	if len(labels) == 0 {
		labels = r.Options(c)
	}
	set := make(activeSet, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

// Filter returns the rows matching sel. In ModePoint a row's year must equal
// sel.Year; in ModeCumulative it must be at or before it. Every categorical
// label must belong to its active set.
func (r *Resolver) Filter(rows []Row, sel Selection, mode Mode) []Row {
	states := r.active(sel, model.CategoryState)
	ages := r.active(sel, model.CategoryAgeGroup)
	races := r.active(sel, model.CategoryRace)
	sexes := r.active(sel, model.CategorySex)
	hisps := r.active(sel, model.CategoryHisp)

	var out []Row
	for _, row := range rows {
		if mode == ModeCumulative {
			if row.Year > sel.Year {
				continue
			}
		} else if row.Year != sel.Year {
			continue
		}
		if !states[row.State] || !ages[row.AgeGroup] || !races[row.Race] || !sexes[row.Sex] || !hisps[row.Hisp] {
			continue
		}
		out = append(out, row)
	}
	return out
}
