// Package metrics records per-stage pipeline metrics in a Prometheus registry
// that can be scraped by the status server or written to a textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "hfquant"

// Recorder owns a private registry so tests and runs never collide.
type Recorder struct {
	reg *prometheus.Registry

	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageActive   *prometheus.GaugeVec
	lastSuccess   *prometheus.GaugeVec
}

// NewRecorder builds a Recorder with process and Go collectors attached.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		stageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "runs_total",
				Help:      "Total number of pipeline stage executions by outcome",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Wall-clock duration of pipeline stages in seconds",
				// clones and conversions of large checkpoints take tens of minutes
				Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
			},
			[]string{"stage"},
		),
		stageActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "active",
				Help:      "1 while the stage is running",
			},
			[]string{"stage"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful completion of the stage",
			},
			[]string{"stage"},
		),
	}
	r.reg.MustRegister(
		r.stageRuns, r.stageDuration, r.stageActive, r.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the underlying registry for HTTP handlers.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// StageStarted marks stage as running.
func (r *Recorder) StageStarted(stage string) {
	r.stageActive.WithLabelValues(stage).Set(1)
}

// StageFinished records one execution of stage.
func (r *Recorder) StageFinished(stage, outcome string, d time.Duration) {
	r.stageActive.WithLabelValues(stage).Set(0)
	r.stageRuns.WithLabelValues(stage, outcome).Inc()
	if outcome == "skipped" {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if outcome == "ok" {
		r.lastSuccess.WithLabelValues(stage).SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
