package recorder

import "DrawdownMonitor/internal/model"

// Recorder persists per-batch metric snapshots for later analysis.
type Recorder interface {
	RecordBatch(records []model.MetricRecord) error
	Close() error
}
