package census

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/config"
)

// Vintage maps a calendar year to the PEP dataset release and date code that
// carries its July 1 estimate.
type Vintage struct {
	Year      int               `yaml:"year"`
	Dataset   string            `yaml:"dataset"`
	Fields    []string          `yaml:"fields"`
	DateParam string            `yaml:"date_param"`
	DateCode  int               `yaml:"date_code"`
	Aliases   map[string]string `yaml:"aliases,omitempty"`
}

var (
	intercensalFields = []string{"AGEGROUP", "RACE", "SEX", "HISP", "POP"}
	stchar6Fields     = []string{"POP", "RACE6", "SEX", "HISP", "AGE"}
	charAgeFields     = []string{"AGEGROUP", "SEX", "RACE", "POP", "HISP"}
)

// DefaultVintages returns the 2010-2019 lookup table. The pairing of years to
// releases and date codes is upstream knowledge and is kept as data.
func DefaultVintages() []Vintage {
	stchar6Aliases := func() map[string]string {
		return map[string]string{"race6": "race", "age": "agegroup"}
	}
	return []Vintage{
		{Year: 2010, Dataset: "2000/pep/int_charagegroups", Fields: intercensalFields, DateParam: "DATE_", DateCode: 12},
		{Year: 2011, Dataset: "2013/pep/stchar6", Fields: stchar6Fields, DateParam: "DATE_", DateCode: 4, Aliases: stchar6Aliases()},
		{Year: 2012, Dataset: "2013/pep/stchar6", Fields: stchar6Fields, DateParam: "DATE_", DateCode: 5, Aliases: stchar6Aliases()},
		{Year: 2013, Dataset: "2013/pep/stchar6", Fields: stchar6Fields, DateParam: "DATE_", DateCode: 6, Aliases: stchar6Aliases()},
		{Year: 2014, Dataset: "2016/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_", DateCode: 7},
		{Year: 2015, Dataset: "2016/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_", DateCode: 8},
		{Year: 2016, Dataset: "2016/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_", DateCode: 9},
		{Year: 2017, Dataset: "2019/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_CODE", DateCode: 10},
		{Year: 2018, Dataset: "2019/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_CODE", DateCode: 11},
		{Year: 2019, Dataset: "2019/pep/charagegroups", Fields: charAgeFields, DateParam: "DATE_CODE", DateCode: 12},
	}
}

// URL builds the request URL for the vintage. The API key is appended by the
// Extractor, not here.
func (v Vintage) URL(baseURL string) string {
	return fmt.Sprintf("%s/%s?get=%s&for=state:*&%s=%d",
		strings.TrimRight(baseURL, "/"),
		strings.Trim(v.Dataset, "/"),
		strings.Join(v.Fields, ","),
		url.QueryEscape(v.DateParam),
		v.DateCode,
	)
}

// Validate checks that the vintage can produce a request.
func (v Vintage) Validate() error {
	var missing []string
	if v.Year <= 0 {
		missing = append(missing, "year")
	}
	if v.Dataset == "" {
		missing = append(missing, "dataset")
	}
	if len(v.Fields) == 0 {
		missing = append(missing, "fields")
	}
	if v.DateParam == "" {
		missing = append(missing, "date_param")
	}
	if len(missing) > 0 {
		return eris.Errorf("vintage %d: missing %s", v.Year, strings.Join(missing, ", "))
	}
	return nil
}

// VintagesFromConfig overlays configured vintages onto the defaults. A
// configured year replaces the default entry for that year; new years are
// added. The result is ordered by year.
func VintagesFromConfig(cfgs []config.VintageConfig) ([]Vintage, error) {
	byYear := make(map[int]Vintage)
	for _, v := range DefaultVintages() {
		byYear[v.Year] = v
	}
	for _, c := range cfgs {
		v := Vintage{
			Year:      c.Year,
			Dataset:   c.Dataset,
			Fields:    c.Fields,
			DateParam: c.DateParam,
			DateCode:  c.DateCode,
			Aliases:   c.Aliases,
		}
		if err := v.Validate(); err != nil {
			return nil, eris.Wrap(err, "census: configured vintage")
		}
		byYear[v.Year] = v
	}

	out := make([]Vintage, 0, len(byYear))
	for _, v := range byYear {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// SelectYears returns the vintages for the given years in table order.
// An empty year list selects every vintage.
func SelectYears(vintages []Vintage, years []int) ([]Vintage, error) {
	if len(years) == 0 {
		return vintages, nil
	}

	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}

	var out []Vintage
	for _, v := range vintages {
		if want[v.Year] {
			out = append(out, v)
			delete(want, v.Year)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for y := range want {
			unknown = append(unknown, fmt.Sprint(y))
		}
		sort.Strings(unknown)
		return nil, eris.Errorf("census: no vintage for year(s) %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
