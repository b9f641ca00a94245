package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status LoadStatus
		want   string
	}{
		{LoadStatusRunning, "running"},
		{LoadStatusComplete, "complete"},
		{LoadStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestYearResultOK(t *testing.T) {
	assert.True(t, YearResult{Status: LoadStatusComplete}.OK())
	assert.False(t, YearResult{Status: LoadStatusFailed}.OK())
	assert.False(t, YearResult{Status: LoadStatusRunning}.OK())
}

func TestObservationKeyAndValues(t *testing.T) {
	o := Observation{Year: 2014, State: "5", AgeGroup: "1", Race: "2", Sex: "1", Hisp: "1", Pop: 500}

	assert.Equal(t, Key{Year: 2014, State: "5", AgeGroup: "1", Race: "2", Sex: "1", Hisp: "1"}, o.Key())

	vals := o.Values()
	require.Len(t, vals, len(ObservationColumns))
	assert.Equal(t, []any{2014, "5", "1", "2", "1", "1", 500.0}, vals)
}

func TestParseCategory(t *testing.T) {
	for _, c := range AllCategories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("county")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}
