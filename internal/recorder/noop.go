package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPanel(_ *PanelSnapshot) error { return nil }
func (n *NoopRecorder) RecentSnapshots(_ string, _ int) ([]SnapshotRow, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
