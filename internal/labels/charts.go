package labels

import (
	"sort"
	"strconv"

	"github.com/sells-group/demography-cli/internal/model"
)

// Series is one trace of a chart. For pie charts X holds slice names.
type Series struct {
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// Chart is an aggregated chart ready for client-side rendering.
type Chart struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Kind   string   `json:"kind"`
	XTitle string   `json:"x_title,omitempty"`
	Series []Series `json:"series"`
}

// BuildCharts aggregates the six dashboard charts for sel: two grouped bar
// charts for the selected year, two grouped bar charts and two pies over
// every year up to it.
func (r *Resolver) BuildCharts(rows []Row, sel Selection) []Chart {
	point := r.Filter(rows, sel, ModePoint)
	cumulative := r.Filter(rows, sel, ModeCumulative)

	stateX := func(row Row) string { return row.State }
	yearX := func(row Row) string { return strconv.Itoa(row.Year) }
	race := func(row Row) string { return row.Race }
	sex := func(row Row) string { return row.Sex }

	stateOrder := r.Options(model.CategoryState)
	raceOrder := r.Options(model.CategoryRace)
	sexOrder := r.Options(model.CategorySex)

	return []Chart{
		groupedBar("state_by_race", "Statewise Population by Race", "state", point, stateX, race, stateOrder, raceOrder),
		groupedBar("state_by_sex", "Statewise Population by Gender", "state", point, stateX, sex, stateOrder, sexOrder),
		groupedBar("year_by_race", "Population over time grouped by race", "year", cumulative, yearX, race, nil, raceOrder),
		groupedBar("year_by_sex", "Population over time grouped by gender", "year", cumulative, yearX, sex, nil, sexOrder),
		pie("race_pie", "Population by Race", cumulative, race, raceOrder),
		pie("sex_pie", "Population by Gender", cumulative, sex, sexOrder),
	}
}

// groupedBar sums pop per (x, group). Axis values follow order when given,
// otherwise they sort numerically.
func groupedBar(id, title, xTitle string, rows []Row, xOf, groupOf func(Row) string, xOrder, groupOrder []string) Chart {
	sums := make(map[string]map[string]float64)
	xs := make(map[string]bool)
	for _, row := range rows {
		g := groupOf(row)
		if sums[g] == nil {
			sums[g] = make(map[string]float64)
		}
		x := xOf(row)
		sums[g][x] += row.Pop
		xs[x] = true
	}

	xAxis := orderKeys(xs, xOrder)
	series := make([]Series, 0, len(sums))
	for _, g := range orderKeys(keysOf(sums), groupOrder) {
		s := Series{Name: g, X: xAxis, Y: make([]float64, len(xAxis))}
		for i, x := range xAxis {
			s.Y[i] = sums[g][x]
		}
		series = append(series, s)
	}
	return Chart{ID: id, Title: title, Kind: "bar", XTitle: xTitle, Series: series}
}

func pie(id, title string, rows []Row, nameOf func(Row) string, order []string) Chart {
	sums := make(map[string]float64)
	names := make(map[string]bool)
	for _, row := range rows {
		n := nameOf(row)
		sums[n] += row.Pop
		names[n] = true
	}

	s := Series{Name: title}
	for _, n := range orderKeys(names, order) {
		s.X = append(s.X, n)
		s.Y = append(s.Y, sums[n])
	}
	return Chart{ID: id, Title: title, Kind: "pie", Series: []Series{s}}
}

func keysOf[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// orderKeys lists present keys in the given order, then any leftovers sorted.
func orderKeys(present map[string]bool, order []string) []string {
	out := make([]string, 0, len(present))
	used := make(map[string]bool, len(present))
	for _, k := range order {
		if present[k] && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range present {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		a, errA := strconv.Atoi(rest[i])
		b, errB := strconv.Atoi(rest[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return rest[i] < rest[j]
	})
	return append(out, rest...)
}
