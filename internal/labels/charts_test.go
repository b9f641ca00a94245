package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCharts(t *testing.T) {
	r := NewResolver(DefaultEntries())
	charts := r.BuildCharts(sampleRows(r), Selection{Year: 2012})
	require.Len(t, charts, 6)

	ids := make([]string, len(charts))
	for i, c := range charts {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"state_by_race", "state_by_sex", "year_by_race", "year_by_sex", "race_pie", "sex_pie"}, ids)

	byRace := charts[0]
	assert.Equal(t, "bar", byRace.Kind)
	require.Len(t, byRace.Series, 2)
	assert.Equal(t, "White alone", byRace.Series[0].Name)
	assert.Equal(t, []string{"Alabama", "California"}, byRace.Series[0].X)
	assert.Equal(t, []float64{100, 0}, byRace.Series[0].Y)
	assert.Equal(t, []float64{0, 200}, byRace.Series[1].Y)

	overTime := charts[2]
	require.Len(t, overTime.Series, 2)
	assert.Equal(t, []string{"2010", "2011", "2012"}, overTime.Series[0].X)
	assert.Equal(t, []float64{100, 100, 100}, overTime.Series[0].Y)

	racePie := charts[4]
	assert.Equal(t, "pie", racePie.Kind)
	require.Len(t, racePie.Series, 1)
	assert.Equal(t, []string{"White alone", "Black alone"}, racePie.Series[0].X)
	assert.Equal(t, []float64{300, 600}, racePie.Series[0].Y)

	sexPie := charts[5]
	assert.Equal(t, []string{"Male", "Female"}, sexPie.Series[0].X)
}

func TestBuildCharts_SumsDuplicates(t *testing.T) {
	r := NewResolver(DefaultEntries())
	rows := []Row{
		{Year: 2013, State: "Alabama", AgeGroup: "4 to 8", Race: "White alone", Sex: "Male", Hisp: "Hispanic Origin", Pop: 10},
		{Year: 2013, State: "Alabama", AgeGroup: "8 to 12", Race: "White alone", Sex: "Male", Hisp: "Hispanic Origin", Pop: 5},
	}
	charts := r.BuildCharts(rows, Selection{Year: 2013})
	assert.Equal(t, []float64{15}, charts[0].Series[0].Y)
	assert.Equal(t, []float64{15}, charts[5].Series[0].Y)
}

func TestBuildCharts_Empty(t *testing.T) {
	r := NewResolver(DefaultEntries())
	charts := r.BuildCharts(nil, Selection{Year: 2013})
	require.Len(t, charts, 6)
	assert.Empty(t, charts[0].Series)
	assert.Empty(t, charts[4].Series[0].X)
}

func TestOrderKeys(t *testing.T) {
	present := map[string]bool{"b": true, "10": true, "2": true, "a": true}
	assert.Equal(t, []string{"a", "2", "10", "b"}, orderKeys(present, []string{"a", "z"}))
}
