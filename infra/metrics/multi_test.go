package metrics

import (
	"fmt"
	"testing"

	coremetrics "github.com/gridpulse/dersim/core/metrics"
)

type recordingSink struct {
	events   int
	failures int
	err      error
}

func (s *recordingSink) RecordReadings(coremetrics.ReadingEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events++
	return nil
}

func (s *recordingSink) RecordPublishFailure(string) error {
	s.failures++
	return nil
}

// readingsOnlySink does not implement PublishFailureRecorder.
type readingsOnlySink struct {
	events int
}

func (s *readingsOnlySink) RecordReadings(coremetrics.ReadingEvent) error {
	s.events++
	return nil
}

func TestMultiSinkFanOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordReadings(coremetrics.ReadingEvent{ProjectID: "p1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if a.events != 1 || b.events != 1 {
		t.Errorf("events not fanned out: %d/%d", a.events, b.events)
	}

	if err := m.RecordPublishFailure("p1"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if a.failures != 1 || b.failures != 1 {
		t.Errorf("failures not fanned out: %d/%d", a.failures, b.failures)
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := fmt.Errorf("sink down")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordReadings(coremetrics.ReadingEvent{}); err != boom {
		t.Errorf("error not propagated: %v", err)
	}
	if b.events != 0 {
		t.Errorf("later sink reached after error: %d", b.events)
	}
}

func TestMultiSinkSkipsNonRecorders(t *testing.T) {
	a := &readingsOnlySink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordPublishFailure("p1"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if b.failures != 1 {
		t.Errorf("recorder sink missed: %d", b.failures)
	}
	if a.events != 0 {
		t.Errorf("readings-only sink touched: %d", a.events)
	}
}
