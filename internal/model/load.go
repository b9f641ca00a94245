package model

import "time"

// LoadStatus represents the state of one year's load.
type LoadStatus string

const (
	LoadStatusRunning  LoadStatus = "running"
	LoadStatusComplete LoadStatus = "complete"
	LoadStatusFailed   LoadStatus = "failed"
)

// YearResult describes the outcome of loading a single year.
type YearResult struct {
	Year     int           `json:"year"`
	Dataset  string        `json:"dataset"`
	Status   LoadStatus    `json:"status"`
	Rows     int64         `json:"rows"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OK reports whether the year loaded successfully.
func (r YearResult) OK() bool {
	return r.Status == LoadStatusComplete
}

// LoadEntry represents a row in load_log.
type LoadEntry struct {
	ID          string     `json:"id"`
	Year        int        `json:"year"`
	Dataset     string     `json:"dataset"`
	Status      LoadStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rows        int64      `json:"rows"`
	Error       string     `json:"error,omitempty"`
}
