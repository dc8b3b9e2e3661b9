// Package monitor runs scheduled background tasks: the store reachability
// probe and housekeeping jobs.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	store   Pinger
	timeout time.Duration
	logger  *zap.Logger

	up      prometheus.Gauge
	latency prometheus.Gauge
	probes  *prometheus.CounterVec
}

func NewScheduler(store Pinger, reg prometheus.Registerer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := promauto.With(reg)
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		timeout: 2 * time.Second,
		logger:  logger.Named("monitor"),
		up: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "webforge",
			Subsystem: "store",
			Name:      "up",
			Help:      "1 when the last store probe succeeded, 0 otherwise.",
		}),
		latency: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "webforge",
			Subsystem: "store",
			Name:      "probe_latency_seconds",
			Help:      "Duration of the last store probe.",
		}),
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webforge",
			Subsystem: "store",
			Name:      "probes_total",
			Help:      "Store probes by result.",
		}, []string{"result"}),
	}
}

// Probe pings the store once and records the outcome.
func (s *Scheduler) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.store.Ping(ctx)
	s.latency.Set(time.Since(start).Seconds())

	if err != nil {
		s.up.Set(0)
		s.probes.WithLabelValues("error").Inc()
		s.logger.Warn("store probe failed", zap.Error(err))
		return err
	}
	s.up.Set(1)
	s.probes.WithLabelValues("ok").Inc()
	return nil
}

// AddTask schedules fn under a six-field cron spec (seconds first).
func (s *Scheduler) AddTask(spec, name string, fn func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled task panicked", zap.String("task", name), zap.Any("panic", r))
			}
		}()
		fn()
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// Start probes the store once, schedules the probe on probeSchedule and
// starts the cron loop. An empty probeSchedule runs only the added tasks.
func (s *Scheduler) Start(probeSchedule string) error {
	if probeSchedule != "" {
		if err := s.AddTask(probeSchedule, "store-probe", func() {
			_ = s.Probe(context.Background())
		}); err != nil {
			return err
		}
		_ = s.Probe(context.Background())
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("probe_schedule", probeSchedule))
	return nil
}

// Stop halts scheduling and waits for running tasks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
