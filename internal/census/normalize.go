package census

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/demography-cli/internal/model"
)

// requiredColumns are the canonical columns every response must provide.
var requiredColumns = []string{"state", "agegroup", "race", "sex", "hisp", "pop"}

// CanonicalColumn lowercases a column name and replaces spaces with underscores.
func CanonicalColumn(name string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(strings.TrimSpace(name)), " ", "_")
}

// Normalize converts a parsed table into observations for year. Column names
// are canonicalized, aliases renamed, pop cast to float64 and the rows
// projected onto the primary key plus pop. Codes stay as text.
func Normalize(t *Table, year int, aliases map[string]string) ([]model.Observation, error) {
	canonAliases := make(map[string]string, len(aliases))
	for from, to := range aliases {
		canonAliases[CanonicalColumn(from)] = CanonicalColumn(to)
	}

	idx := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		name := CanonicalColumn(col)
		if to, ok := canonAliases[name]; ok {
			name = to
		}
		if _, dup := idx[name]; dup {
			return nil, &ParseError{Err: eris.Errorf("column %q appears more than once after renaming", name)}
		}
		idx[name] = i
	}

	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &ParseError{Err: eris.Errorf("missing required column %q", col)}
		}
	}

	out := make([]model.Observation, 0, len(t.Rows))
	seen := make(map[model.Key]int, len(t.Rows))
	for i, row := range t.Rows {
		raw := row[idx["pop"]]
		pop, err := parsePop(raw)
		if err != nil {
			return nil, &TypeConversionError{Column: "pop", Value: raw, Err: err}
		}

		obs := model.Observation{
			Year:     year,
			State:    strings.TrimSpace(row[idx["state"]]),
			AgeGroup: strings.TrimSpace(row[idx["agegroup"]]),
			Race:     strings.TrimSpace(row[idx["race"]]),
			Sex:      strings.TrimSpace(row[idx["sex"]]),
			Hisp:     strings.TrimSpace(row[idx["hisp"]]),
			Pop:      pop,
		}

		key := obs.Key()
		if prev, ok := seen[key]; ok {
			return nil, &LoadError{Year: year, Err: eris.Errorf("duplicate primary key %v in rows %d and %d", key, prev, i)}
		}
		seen[key] = i
		out = append(out, obs)
	}
	return out, nil
}

func parsePop(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Wrap(err, "parse float")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, eris.New("not a finite number")
	}
	return f, nil
}
