package recorder

import "time"

// QueryEvent is one completed price query.
type QueryEvent struct {
	Timestamp time.Time
	Owner     string
	RequestID string
	Symbol    string
	Code      string
	From      *time.Time
	To        *time.Time
	Source    string
	Bars      int
	LastClose float64
	Error     string
}

// Recorder persists query history for later review.
type Recorder interface {
	RecordQuery(evt *QueryEvent) error
	RecentQueries(owner string, limit int) ([]QueryEvent, error)
	Close() error
}
