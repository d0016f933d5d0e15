package metrics

import (
	coremetrics "github.com/gridpulse/dersim/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records generation passes in Prometheus metrics.
type PromSink struct {
	readings  *prometheus.CounterVec
	net       *prometheus.GaugeVec
	failures  *prometheus.CounterVec
	violation prometheus.Gauge
}

// NewPromSink registers simulator metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	readings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dersim_readings_total",
		Help: "Total number of generation passes published per project",
	}, []string{"project_id"})
	net := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dersim_net_consumption_kw",
		Help: "Net consumption of the last generation pass",
	}, []string{"project_id"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dersim_publish_failures_total",
		Help: "Total number of failed publish attempts per project",
	}, []string{"project_id"})
	violation := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dersim_violation_mode",
		Help: "1 while readings are generated in violation mode",
	})

	if err := reg.Register(readings); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			readings = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(net); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			net = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(failures); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			failures = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(violation); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			violation = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{readings: readings, net: net, failures: failures, violation: violation}, nil
}

// RecordReadings updates the counters and gauges for one pass.
func (s *PromSink) RecordReadings(ev coremetrics.ReadingEvent) error {
	s.readings.WithLabelValues(ev.ProjectID).Inc()
	s.net.WithLabelValues(ev.ProjectID).Set(ev.NetConsumption)
	if ev.Violating {
		s.violation.Set(1)
	} else {
		s.violation.Set(0)
	}
	return nil
}

// RecordPublishFailure increments the failure counter.
func (s *PromSink) RecordPublishFailure(projectID string) error {
	s.failures.WithLabelValues(projectID).Inc()
	return nil
}
