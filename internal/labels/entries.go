// Package labels resolves categorical codes to display labels and filters
// and aggregates observations for the dashboard.
package labels

import (
	"fmt"

	"github.com/sells-group/demography-cli/internal/model"
)

var raceLabels = []string{
	"All races",
	"White alone",
	"Black alone",
	"American Indian and Alaska Native alone",
	"Asian alone",
	"Native Hawaiian and Other Pacific Islander alone",
	"Two or more races",
	"White alone or in combination",
	"Black alone or in combination",
	"American Indian and Alaska Native alone or in combination",
	"Asian alone or in combination",
	"Native Hawaiian and Other Pacific Islander alone or in combination",
}

var sexLabels = []string{"Both Sexes", "Male", "Female"}

var hispLabels = []string{"Both Hispanic Origins", "No Hispanic Origin", "Hispanic Origin"}

var stateLabels = []string{
	"All States",
	"Alabama",
	"Alaska",
	"Arizona",
	"Arkansas",
	"California",
	"Colorado",
	"Connecticut",
	"Delaware",
	"Florida",
	"Georgia",
	"Hawaii",
	"Idaho",
	"Illinois",
	"Indiana",
	"Iowa",
	"Kansas",
	"Kentucky",
	"Louisiana",
	"Maine",
	"Maryland",
	"Massachusetts",
	"Michigan",
	"Minnesota",
}

// DefaultEntries returns the built-in metadata_table contents. Code 0 in each
// category is the All/Both aggregate.
func DefaultEntries() []model.CategoryEntry {
	var out []model.CategoryEntry
	for x := 0; x <= 30; x++ {
		out = append(out, model.CategoryEntry{
			Category: model.CategoryAgeGroup,
			Code:     x,
			Label:    fmt.Sprintf("%d to %d", x*4, x*4+4),
		})
	}
	out = appendLabels(out, model.CategoryState, stateLabels)
	out = appendLabels(out, model.CategoryRace, raceLabels)
	out = appendLabels(out, model.CategorySex, sexLabels)
	out = appendLabels(out, model.CategoryHisp, hispLabels)
	return out
}

func appendLabels(out []model.CategoryEntry, c model.Category, labels []string) []model.CategoryEntry {
	for code, label := range labels {
		out = append(out, model.CategoryEntry{Category: c, Code: code, Label: label})
	}
	return out
}
