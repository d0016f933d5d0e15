package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gridpulse/dersim/config"
	coremetrics "github.com/gridpulse/dersim/core/metrics"
	coremqtt "github.com/gridpulse/dersim/core/mqtt"
	"github.com/gridpulse/dersim/core/sim"
	"github.com/gridpulse/dersim/infra/logger"
	"github.com/gridpulse/dersim/infra/metrics"
	"github.com/gridpulse/dersim/infra/mqtt"
)

// Service runs one generation-and-publish worker per controller.
type Service struct {
	cfg     *config.Root
	pub     coremqtt.Publisher
	sink    coremetrics.MetricsSink
	log     logger.Logger
	engines []*sim.Engine
	osc     *sim.Oscillator
	counter *messageCounter
}

// New creates a Service from the configuration, connecting to the MQTT
// broker and wiring the configured metric sinks.
func New(cfg *config.Root) (*Service, error) {
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	return NewWithPublisher(cfg, client, sink), nil
}

// NewWithPublisher creates a Service around an existing publisher and sink.
func NewWithPublisher(cfg *config.Root, pub coremqtt.Publisher, sink coremetrics.MetricsSink) *Service {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	svc := &Service{
		cfg:     cfg,
		pub:     pub,
		sink:    sink,
		log:     logger.New("service"),
		counter: newMessageCounter(cfg.Simulation.MaxMessages),
	}

	if cfg.Violation.Enabled && cfg.Violation.Oscillate {
		svc.osc = sim.NewOscillator(
			time.Duration(cfg.Violation.SwitchIntervalSeconds) * time.Second)
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := sim.Options{
		ViolationEnabled: cfg.Violation.Enabled && !cfg.Violation.Oscillate,
		Multiplier:       cfg.Violation.Multiplier,
		Oscillator:       svc.osc,
	}
	for i, ctrl := range cfg.Controllers {
		svc.engines = append(svc.engines, sim.NewEngine(ctrl, seed+int64(i), opts))
	}
	return svc
}

// Run starts one worker per controller and blocks until every worker has
// finished, either because the context was canceled or the message limit
// was reached.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	var wg sync.WaitGroup
	for _, eng := range s.engines {
		wg.Add(1)
		go func(eng *sim.Engine) {
			defer wg.Done()
			s.runWorker(ctx, cancel, eng)
		}(eng)
	}
	wg.Wait()

	s.pub.Disconnect(250)
	s.log.Infof("all controllers shut down after %d messages", s.counter.total())
	return nil
}

// runWorker is the per-controller loop: generate, publish, sleep. A
// generation failure terminates only this worker; a publish failure is
// logged and the next tick retries with fresh data.
func (s *Service) runWorker(ctx context.Context, cancel context.CancelFunc, eng *sim.Engine) {
	ctrl := eng.Controller()
	log := logger.New("worker")
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("project %s: generation panic: %v", ctrl.ProjectID, r)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	topic := coremqtt.ProjectTopic(ctrl.ProjectID)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		readings, net, err := eng.Generate(now)
		if err != nil {
			log.Errorf("project %s: generation failed: %v", ctrl.ProjectID, err)
			return
		}

		payload, err := json.Marshal(readings)
		if err != nil {
			log.Errorf("project %s: encode readings: %v", ctrl.ProjectID, err)
			return
		}

		if err := s.pub.Publish(topic, payload); err != nil {
			log.Errorf("project %s: publish failed: %v", ctrl.ProjectID, err)
			if rec, ok := s.sink.(coremetrics.PublishFailureRecorder); ok {
				if rerr := rec.RecordPublishFailure(ctrl.ProjectID); rerr != nil {
					log.Warnf("record publish failure: %v", rerr)
				}
			}
		} else {
			total, done := s.counter.inc()
			log.Debugw("published readings", map[string]any{
				"project_id": ctrl.ProjectID,
				"ders":       len(readings),
				"net_kw":     net,
				"total":      total,
			})
			if err := s.sink.RecordReadings(coremetrics.ReadingEvent{
				ProjectID:      ctrl.ProjectID,
				Readings:       readings,
				NetConsumption: net,
				Violating:      s.violating(),
				Time:           now,
			}); err != nil {
				log.Warnf("record readings: %v", err)
			}
			if done {
				cancel()
				return
			}
		}

		sleep := time.Duration(s.cfg.Simulation.MinIntervalSeconds+
			rng.Intn(s.cfg.Simulation.MaxIntervalSeconds-s.cfg.Simulation.MinIntervalSeconds+1)) * time.Second
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// violating reports whether the current pass was generated in violation
// mode, whichever strategy is active.
func (s *Service) violating() bool {
	if s.osc != nil {
		return s.osc.Violating()
	}
	return s.cfg.Violation.Enabled
}

// Counter exposes the number of published messages, for tests and the CLI.
func (s *Service) Counter() int { return s.counter.total() }

// Engines exposes the per-controller engines, for tests.
func (s *Service) Engines() []*sim.Engine { return s.engines }
