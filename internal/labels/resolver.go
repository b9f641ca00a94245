package labels

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/demography-cli/internal/model"
)

// codeRange is the inclusive range of codes displayed for a category.
type codeRange struct {
	min, max int
}

var displayRanges = map[model.Category]codeRange{
	model.CategoryAgeGroup: {0, 30},
	model.CategorySex:      {1, 2},
	model.CategoryRace:     {1, 11},
	model.CategoryHisp:     {1, 2},
	model.CategoryState:    {1, 23},
}

// Row is an observation with its codes replaced by labels. A code without a
// label renders as "".
type Row struct {
	Year     int     `json:"year"`
	State    string  `json:"state"`
	AgeGroup string  `json:"agegroup"`
	Race     string  `json:"race"`
	Sex      string  `json:"sex"`
	Hisp     string  `json:"hisp"`
	Pop      float64 `json:"pop"`
}

// Resolver maps category codes to labels.
type Resolver struct {
	labels  map[model.Category]map[int]string
	options map[model.Category][]string
}

// NewResolver builds per-category maps from metadata entries. Code 0 entries
// and codes outside a category's display range are dropped.
func NewResolver(entries []model.CategoryEntry) *Resolver {
	r := &Resolver{
		labels:  make(map[model.Category]map[int]string),
		options: make(map[model.Category][]string),
	}
	for _, c := range model.AllCategories() {
		r.labels[c] = make(map[int]string)
	}

	for _, e := range entries {
		if e.Code == 0 {
			continue
		}
		rng, ok := displayRanges[e.Category]
		if !ok || e.Code < rng.min || e.Code > rng.max {
			continue
		}
		r.labels[e.Category][e.Code] = e.Label
	}

	for c, m := range r.labels {
		codes := make([]int, 0, len(m))
		for code := range m {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		seen := make(map[string]bool, len(codes))
		opts := make([]string, 0, len(codes))
		for _, code := range codes {
			l := m[code]
			if seen[l] {
				continue
			}
			seen[l] = true
			opts = append(opts, l)
		}
		r.options[c] = opts
	}
	return r
}

// Label returns the label for a code given as text. Unknown categories,
// out-of-range codes and non-integer text all yield ("", false).
func (r *Resolver) Label(c model.Category, code string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	return r.LabelCode(c, n)
}

// LabelCode returns the label for an integer code.
func (r *Resolver) LabelCode(c model.Category, code int) (string, bool) {
	m, ok := r.labels[c]
	if !ok {
		return "", false
	}
	l, ok := m[code]
	return l, ok
}

// Options returns the selectable labels of a category in code order.
func (r *Resolver) Options(c model.Category) []string {
	return r.options[c]
}

// Resolve converts observations to display rows.
func (r *Resolver) Resolve(obs []model.Observation) []Row {
	rows := make([]Row, len(obs))
	for i, o := range obs {
		rows[i] = Row{
			Year:     o.Year,
			State:    r.label(model.CategoryState, o.State),
			AgeGroup: r.label(model.CategoryAgeGroup, o.AgeGroup),
			Race:     r.label(model.CategoryRace, o.Race),
			Sex:      r.label(model.CategorySex, o.Sex),
			Hisp:     r.label(model.CategoryHisp, o.Hisp),
			Pop:      o.Pop,
		}
	}
	return rows
}

func (r *Resolver) label(c model.Category, code string) string {
	l, _ := r.Label(c, code)
	return l
}
