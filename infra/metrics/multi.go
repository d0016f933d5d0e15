package metrics

import coremetrics "github.com/gridpulse/dersim/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReadings forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordReadings(ev coremetrics.ReadingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordReadings(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPublishFailure forwards to sinks that track transport health.
func (m *MultiSink) RecordPublishFailure(projectID string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PublishFailureRecorder); ok {
			if err := rec.RecordPublishFailure(projectID); err != nil {
				return err
			}
		}
	}
	return nil
}
