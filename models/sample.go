package models

import "time"

// Sample is one timestamped vertical acceleration measurement in g.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

func (Sample) CSVHeader() []string {
	return []string{"Time", "Acceleration"}
}

// CSVRow renders the sample relative to start. A zero start means the
// session has no anchor and the row is reported at elapsed zero.
func (s Sample) CSVRow(start time.Time) []string {
	if start.IsZero() {
		start = s.Timestamp
	}
	return []string{
		elapsed(s.Timestamp.Sub(start)),
		gtoa(s.Value),
	}
}

// SessionState is the measuring lifecycle of a sampler.
type SessionState struct {
	Measuring bool      `json:"measuring"`
	StartTime time.Time `json:"start_time"` // zero when unset
	SessionID string    `json:"session_id,omitempty"`
}

// Snapshot is a read-only copy of a sampler's series and session flags.
type Snapshot struct {
	SessionState
	Series []Sample `json:"series"`
}

// Len returns the number of resident samples.
func (s Snapshot) Len() int { return len(s.Series) }

// Span returns the time covered by the resident samples.
func (s Snapshot) Span() time.Duration {
	if len(s.Series) < 2 {
		return 0
	}
	return s.Series[len(s.Series)-1].Timestamp.Sub(s.Series[0].Timestamp)
}

var _ CSVRowWriter = Sample{}
