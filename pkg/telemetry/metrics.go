package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// namespace prefixes every saltboot metric name.
const namespace = "saltboot"

// Metrics collects run and phase measurements on a private registry.
// saltboot is a one-shot tool, so instead of serving an HTTP endpoint
// the collected state is written as a node-exporter textfile when the
// run ends.
type Metrics struct {
	registry *prometheus.Registry

	phasesTotal   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	runInfo       *prometheus.GaugeVec
	runDuration   prometheus.Gauge
}

// NewMetrics creates the metric set and registers it.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		phasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phases_total",
				Help:      "Lifecycle phases executed, by outcome",
			},
			[]string{"phase", "status"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of lifecycle phase execution in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"phase"},
		),
		runInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_info",
				Help:      "Constant 1 labeled with the identity and mode of the run",
			},
			[]string{"distro", "version", "channel"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of the whole bootstrap run",
			},
		),
	}

	registry.MustRegister(
		m.phasesTotal,
		m.phaseDuration,
		m.runInfo,
		m.runDuration,
	)

	return m
}

// RecordPhase records one phase outcome with its duration.
func (m *Metrics) RecordPhase(phase, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.phasesTotal.WithLabelValues(phase, status).Inc()
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// SetRunInfo records the identity and mode labels for this run.
func (m *Metrics) SetRunInfo(distro, version, channel string) {
	if m == nil {
		return
	}
	m.runInfo.WithLabelValues(distro, version, channel).Set(1)
}

// SetRunDuration records the total run duration.
func (m *Metrics) SetRunDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Set(duration.Seconds())
}

// WriteTextfile renders the registry in the Prometheus text exposition
// format at path, atomically, so a node-exporter textfile collector can
// pick it up.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create metrics tempfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, family); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close metrics tempfile: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move metrics textfile into place: %w", err)
	}
	return nil
}
