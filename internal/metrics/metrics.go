// Package metrics records run statistics for the Prometheus node exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movie_wallpaper"

// Job statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder holds the metrics of one run. A nil *Recorder ignores all calls.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration  *prometheus.GaugeVec
	framesTotal    *prometheus.GaugeVec
	jobsTotal      *prometheus.CounterVec
	montageColumns *prometheus.GaugeVec
	lastRun        prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		stageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall time spent in each pipeline stage",
			},
			[]string{"stage"},
		),
		framesTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Number of PNG frames per working directory",
			},
			[]string{"dir"},
		),
		jobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Fan-out jobs by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		montageColumns: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "montage_columns",
				Help:      "Column count of the computed layout per resolution",
			},
			[]string{"resolution"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
		lastRunSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success",
				Help:      "1 if the last run finished without failures",
			},
		),
	}
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// SetFrames records the frame count of dir ("frames" or "frames_scaled").
func (r *Recorder) SetFrames(dir string, n int) {
	if r == nil {
		return
	}
	r.framesTotal.WithLabelValues(dir).Set(float64(n))
}

// JobDone counts one finished fan-out job.
func (r *Recorder) JobDone(kind string, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	r.jobsTotal.WithLabelValues(kind, status).Inc()
}

// SetColumns records the layout column count for a resolution.
func (r *Recorder) SetColumns(resolution string, columns int) {
	if r == nil {
		return
	}
	r.montageColumns.WithLabelValues(resolution).Set(float64(columns))
}

// RunFinished stamps the end of the run.
func (r *Recorder) RunFinished(at time.Time, success bool) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
	if success {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
