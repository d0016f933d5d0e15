package metrics

import (
	"time"

	"github.com/gridpulse/dersim/core/model"
)

// ReadingEvent captures one generation pass for one controller.
type ReadingEvent struct {
	ProjectID      string
	Readings       []model.DERReading
	NetConsumption float64
	Violating      bool
	Time           time.Time
}

// MetricsSink records generation passes for observability purposes.
type MetricsSink interface {
	RecordReadings(ev ReadingEvent) error
}

// PublishFailureRecorder records failed publish attempts. Implemented by
// sinks that track transport health.
type PublishFailureRecorder interface {
	RecordPublishFailure(projectID string) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordReadings implements MetricsSink.
func (NopSink) RecordReadings(ReadingEvent) error { return nil }

// RecordPublishFailure implements PublishFailureRecorder.
func (NopSink) RecordPublishFailure(string) error { return nil }
