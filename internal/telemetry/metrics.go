package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "pairalign"

// Metrics — метрики одного запуска.
type Metrics struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	runs               *prometheus.CounterVec
	runDuration        prometheus.Gauge
	readPairs          prometheus.Gauge
}

// NewMetrics создаёт метрики в отдельном registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "External process invocations by tool, pass and status.",
		}, []string{"tool", "pass", "status"}),
		invocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall-clock duration of external process invocations.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"tool"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by status.",
		}, []string{"status"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		readPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "read_pairs",
			Help:      "Read pairs (lanes) in the last run.",
		}),
	}

	m.registry.MustRegister(
		m.invocations,
		m.invocationDuration,
		m.runs,
		m.runDuration,
		m.readPairs,
	)
	return m
}

// Registry возвращает registry с метриками запуска.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveInvocation учитывает завершённый вызов внешнего процесса.
func (m *Metrics) ObserveInvocation(tool, pass, status string, d time.Duration) {
	m.invocations.WithLabelValues(tool, pass, status).Inc()
	m.invocationDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveRun учитывает завершённый run.
func (m *Metrics) ObserveRun(status string, pairs int, d time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.readPairs.Set(float64(pairs))
	m.runDuration.Set(d.Seconds())
}

// ExportOptions — куда выгружать метрики.
type ExportOptions struct {
	// Textfile — файл для textfile collector node_exporter.
	Textfile string

	// Pushgateway — URL Pushgateway.
	Pushgateway string

	// Job — имя job в Pushgateway (default: pairalign).
	Job string

	// Grouping — дополнительные метки группировки (например, sample).
	Grouping map[string]string
}

// Export записывает метрики в textfile и/или отправляет в Pushgateway.
// Пустые опции — ничего не делает.
func (m *Metrics) Export(ctx context.Context, opts ExportOptions) error {
	var errs []error

	if opts.Textfile != "" {
		if err := prometheus.WriteToTextfile(opts.Textfile, m.registry); err != nil {
			errs = append(errs, fmt.Errorf("write textfile: %w", err))
		}
	}

	if opts.Pushgateway != "" {
		job := opts.Job
		if job == "" {
			job = namespace
		}
		pusher := push.New(opts.Pushgateway, job).Gatherer(m.registry)
		for k, v := range opts.Grouping {
			pusher = pusher.Grouping(k, v)
		}
		if err := pusher.PushContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}
