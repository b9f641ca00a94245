package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/demography-cli/internal/model"
)

func sampleRows(r *Resolver) []Row {
	var obs []model.Observation
	for year := 2010; year <= 2019; year++ {
		obs = append(obs,
			model.Observation{Year: year, State: "1", AgeGroup: "1", Race: "1", Sex: "1", Hisp: "1", Pop: 100},
			model.Observation{Year: year, State: "5", AgeGroup: "2", Race: "2", Sex: "2", Hisp: "2", Pop: 200},
			model.Observation{Year: year, State: "0", AgeGroup: "0", Race: "0", Sex: "0", Hisp: "0", Pop: 300},
		)
	}
	return r.Resolve(obs)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePoint, m)

	m, err = ParseMode("cumulative")
	require.NoError(t, err)
	assert.Equal(t, ModeCumulative, m)

	_, err = ParseMode("range")
	assert.Error(t, err)
}

func TestFilter_PointNoSelection(t *testing.T) {
	r := NewResolver(DefaultEntries())
	rows := r.Filter(sampleRows(r), Selection{Year: 2013}, ModePoint)

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 2013, row.Year)
	}
}

func TestFilter_CumulativeNoSelection(t *testing.T) {
	r := NewResolver(DefaultEntries())
	rows := r.Filter(sampleRows(r), Selection{Year: 2013}, ModeCumulative)

	require.Len(t, rows, 8)
	for _, row := range rows {
		assert.LessOrEqual(t, row.Year, 2013)
	}
}

func TestFilter_ExplicitSets(t *testing.T) {
	r := NewResolver(DefaultEntries())
	all := sampleRows(r)

	rows := r.Filter(all, Selection{Year: 2015, States: []string{"California"}}, ModePoint)
	require.Len(t, rows, 1)
	assert.Equal(t, "California", rows[0].State)

	rows = r.Filter(all, Selection{Year: 2015, States: []string{"California", "Alabama"}, Sexes: []string{"Male"}}, ModePoint)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alabama", rows[0].State)

	rows = r.Filter(all, Selection{Year: 2015, Races: []string{"Asian alone"}}, ModePoint)
	assert.Empty(t, rows)
}

func TestFilter_YearOutsideData(t *testing.T) {
	r := NewResolver(DefaultEntries())
	assert.Empty(t, r.Filter(sampleRows(r), Selection{Year: 2009}, ModeCumulative))
	assert.Len(t, r.Filter(sampleRows(r), Selection{Year: 2030}, ModeCumulative), 20)
}

func TestSelectionLabels(t *testing.T) {
	sel := Selection{States: []string{"a"}, AgeGroups: []string{"b"}, Races: []string{"c"}, Sexes: []string{"d"}, Hisps: []string{"e"}}
	assert.Equal(t, []string{"a"}, sel.Labels(model.CategoryState))
	assert.Equal(t, []string{"b"}, sel.Labels(model.CategoryAgeGroup))
	assert.Equal(t, []string{"c"}, sel.Labels(model.CategoryRace))
	assert.Equal(t, []string{"d"}, sel.Labels(model.CategorySex))
	assert.Equal(t, []string{"e"}, sel.Labels(model.CategoryHisp))
	assert.Nil(t, sel.Labels(model.Category("x")))
}
