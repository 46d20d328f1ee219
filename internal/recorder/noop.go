package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordQuery(_ *QueryEvent) error                     { return nil }
func (n *NoopRecorder) RecentQueries(_ string, _ int) ([]QueryEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                        { return nil }
