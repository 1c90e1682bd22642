// Package metrics exposes estimation results as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

const namespace = "freqtrack"

// Recorder holds the freqtrack collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	duration        prometheus.Histogram
	initialFreq     *prometheus.GaugeVec
	finalFreq       *prometheus.GaugeVec
	errorHz         *prometheus.GaugeVec
	finalMSE        *prometheus.GaugeVec
	captureCount    *prometheus.GaugeVec
	captureFallback *prometheus.GaugeVec
}

var runLabels = []string{"stages"}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Estimation runs by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of successful estimation runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		initialFreq: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "initial_frequency_hz",
				Help:      "Initial grid search estimate",
			},
			runLabels,
		),
		finalFreq: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "final_frequency_hz",
				Help:      "Converged LMS estimate",
			},
			runLabels,
		),
		errorHz: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "error_hz",
				Help:      "Absolute estimation error against the configured fundamental",
			},
			runLabels,
		),
		finalMSE: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "final_mse",
				Help:      "Final-stage mean square output at the converged estimate",
			},
			runLabels,
		),
		captureCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capture_points",
				Help:      "Grid points inside the capture range",
			},
			runLabels,
		),
		captureFallback: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capture_fallback",
				Help:      "1 if the initial estimate fell back to the MSE minimum, 0 otherwise",
			},
			runLabels,
		),
	}
	r.registry.MustRegister(
		r.runs, r.duration,
		r.initialFreq, r.finalFreq, r.errorHz, r.finalMSE,
		r.captureCount, r.captureFallback,
	)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a finished run. A nil res with a non-nil err counts a
// failure.
func (r *Recorder) Observe(res *freqtrack.Result, err error) {
	if err != nil || res == nil {
		r.runs.WithLabelValues("error").Inc()
		return
	}
	r.runs.WithLabelValues("ok").Inc()
	r.duration.Observe(res.Elapsed.Seconds())

	stages := fmt.Sprint(res.Config.NumStages)
	finalMSE, _ := res.FinalMSE()
	fallback := 0.0
	if res.CaptureFallback() {
		fallback = 1
	}

	r.initialFreq.WithLabelValues(stages).Set(res.InitialFreq())
	r.finalFreq.WithLabelValues(stages).Set(res.FinalFreq())
	r.errorHz.WithLabelValues(stages).Set(res.ErrorHz())
	r.finalMSE.WithLabelValues(stages).Set(finalMSE)
	r.captureCount.WithLabelValues(stages).Set(float64(res.Search.Count))
	r.captureFallback.WithLabelValues(stages).Set(fallback)
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
