// Package model defines the records shared by the loader, the stores and the dashboard.
package model

// Observation is one population estimate for a (year, state, agegroup, race,
// sex, hisp) cell. Codes keep the text form the Census API returned them in.
type Observation struct {
	Year     int     `json:"year"`
	State    string  `json:"state"`
	AgeGroup string  `json:"agegroup"`
	Race     string  `json:"race"`
	Sex      string  `json:"sex"`
	Hisp     string  `json:"hisp"`
	Pop      float64 `json:"pop"`
}

// ObservationColumns is the column order used for bulk copies into the demography table.
var ObservationColumns = []string{"year", "state", "agegroup", "race", "sex", "hisp", "pop"}

// Key identifies an observation within one year's batch.
type Key struct {
	Year     int
	State    string
	AgeGroup string
	Race     string
	Sex      string
	Hisp     string
}

// Key returns the primary key of the observation.
func (o Observation) Key() Key {
	return Key{Year: o.Year, State: o.State, AgeGroup: o.AgeGroup, Race: o.Race, Sex: o.Sex, Hisp: o.Hisp}
}

// Values returns the observation as a row matching ObservationColumns.
func (o Observation) Values() []any {
	return []any{o.Year, o.State, o.AgeGroup, o.Race, o.Sex, o.Hisp, o.Pop}
}
