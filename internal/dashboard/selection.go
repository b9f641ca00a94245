package dashboard

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/config"
	"github.com/sells-group/demography-cli/internal/labels"
	"github.com/sells-group/demography-cli/internal/model"
)

// parseSelection reads year, mode and the per-category label sets from a
// query string. Category values may repeat (state=A&state=B) and every value
// must be a known option.
func parseSelection(q url.Values, cfg config.DashboardConfig, r *labels.Resolver) (labels.Selection, labels.Mode, error) {
	sel := labels.Selection{Year: cfg.DefaultYear}

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return sel, "", eris.Errorf("invalid year %q", raw)
		}
		if year < cfg.MinYear || year > cfg.MaxYear {
			return sel, "", eris.Errorf("year %d outside [%d, %d]", year, cfg.MinYear, cfg.MaxYear)
		}
		sel.Year = year
	}

	mode, err := labels.ParseMode(q.Get("mode"))
	if err != nil {
		return sel, "", err
	}

	for _, c := range model.AllCategories() {
		values := q[string(c)]
		if len(values) == 0 {
			continue
		}
		options := r.Options(c)
		for _, v := range values {
			if !slices.Contains(options, v) {
				return sel, "", eris.Errorf("unknown %s label %q", c, v)
			}
		}
		switch c {
		case model.CategoryState:
			sel.States = values
		case model.CategoryAgeGroup:
			sel.AgeGroups = values
		case model.CategoryRace:
			sel.Races = values
		case model.CategorySex:
			sel.Sexes = values
		case model.CategoryHisp:
			sel.Hisps = values
		}
	}

	return sel, mode, nil
}
