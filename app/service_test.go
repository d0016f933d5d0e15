package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gridpulse/dersim/config"
	coremetrics "github.com/gridpulse/dersim/core/metrics"
	"github.com/gridpulse/dersim/core/model"
	"github.com/gridpulse/dersim/infra/mqtt"
)

func testConfig(controllers ...model.Controller) *config.Root {
	cfg := &config.Root{
		MQTT:        mqtt.Config{Broker: "tcp://localhost:1883"},
		Simulation:  config.SimulationConfig{MaxMessages: 1, Seed: 7},
		Controllers: controllers,
	}
	cfg.Simulation.SetDefaults()
	cfg.Violation.SetDefaults()
	cfg.Metrics.SetDefaults()
	return cfg
}

func testController(projectID string) model.Controller {
	return model.Controller{
		ProjectID:         projectID,
		Baseline:          18,
		ContractThreshold: 15,
		Location:          "Fredericton",
		DERs: []model.DER{
			{ID: "11", Type: model.DERBattery, NameplateCapacity: 10},
			{ID: "12", Type: model.DERSolar, NameplateCapacity: 8},
		},
	}
}

// captureSink records every event for assertion.
type captureSink struct {
	mu       sync.Mutex
	events   []coremetrics.ReadingEvent
	failures int
}

func (s *captureSink) RecordReadings(ev coremetrics.ReadingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSink) RecordPublishFailure(string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return nil
}

func TestServiceStopsAtMessageLimit(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	cfg := testConfig(testController("p1"))
	svc := NewWithPublisher(cfg, pub, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := pub.Count("projects/p1"); got != 1 {
		t.Errorf("published %d messages, want 1", got)
	}
	if svc.Counter() != 1 {
		t.Errorf("counter = %d, want 1", svc.Counter())
	}
	if !pub.Disconnected {
		t.Error("publisher not disconnected on shutdown")
	}
}

func TestServicePayloadShape(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	cfg := testConfig(testController("p1"))
	sink := &captureSink{}
	svc := NewWithPublisher(cfg, pub, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	msgs := pub.Messages["projects/p1"]
	if len(msgs) != 1 {
		t.Fatalf("got %d payloads, want 1", len(msgs))
	}
	var readings []model.DERReading
	if err := json.Unmarshal(msgs[0], &readings); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("payload has %d readings, want 2", len(readings))
	}
	for _, r := range readings {
		if r.ProjectID != "p1" {
			t.Errorf("der %s: project_id = %s", r.DERID, r.ProjectID)
		}
		if r.Units != "kW" {
			t.Errorf("der %s: units = %s", r.DERID, r.Units)
		}
		if r.Baseline != 18 || r.ContractThreshold != 15 {
			t.Errorf("der %s: baseline/threshold %v/%v", r.DERID, r.Baseline, r.ContractThreshold)
		}
		if _, err := time.Parse(model.TimestampLayout, r.Timestamp); err != nil {
			t.Errorf("der %s: bad timestamp %q: %v", r.DERID, r.Timestamp, err)
		}
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("sink saw %d events, want 1", len(sink.events))
	}
	if sink.events[0].ProjectID != "p1" || len(sink.events[0].Readings) != 2 {
		t.Errorf("unexpected sink event: %+v", sink.events[0])
	}
}

func TestServiceMultipleControllers(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	cfg := testConfig(testController("p1"), testController("p2"))
	cfg.Simulation.MaxMessages = 2
	svc := NewWithPublisher(cfg, pub, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := pub.Total(); got < 2 {
		t.Errorf("published %d messages total, want at least 2", got)
	}
	if pub.Count("projects/p1") == 0 || pub.Count("projects/p2") == 0 {
		t.Error("not every controller published")
	}
}

func TestServicePublishFailureKeepsRunning(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	pub.FailTopics["projects/p1"] = true
	cfg := testConfig(testController("p1"))
	sink := &captureSink{}
	svc := NewWithPublisher(cfg, pub, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if svc.Counter() != 0 {
		t.Errorf("counter = %d after failed publishes, want 0", svc.Counter())
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.failures == 0 {
		t.Error("publish failure not recorded")
	}
	if len(sink.events) != 0 {
		t.Errorf("sink saw %d events for failed publishes", len(sink.events))
	}
}

func TestServiceViolationFlag(t *testing.T) {
	cfg := testConfig(testController("p1"))
	cfg.Violation.Enabled = true
	svc := NewWithPublisher(cfg, mqtt.NewMockPublisher(), nil)
	if !svc.violating() {
		t.Error("static violation mode not reported")
	}

	cfg2 := testConfig(testController("p1"))
	svc2 := NewWithPublisher(cfg2, mqtt.NewMockPublisher(), nil)
	if svc2.violating() {
		t.Error("compliant mode reported violating")
	}
}

func TestMessageCounter(t *testing.T) {
	c := newMessageCounter(3)
	for i := 1; i <= 2; i++ {
		if total, done := c.inc(); total != i || done {
			t.Fatalf("inc %d: total=%d done=%v", i, total, done)
		}
	}
	if total, done := c.inc(); total != 3 || !done {
		t.Fatalf("limit not reached: total=%d done=%v", total, done)
	}

	unlimited := newMessageCounter(0)
	for i := 0; i < 50; i++ {
		if _, done := unlimited.inc(); done {
			t.Fatal("unlimited counter reported done")
		}
	}
	if unlimited.total() != 50 {
		t.Errorf("total = %d, want 50", unlimited.total())
	}
}
