package lab

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Observer counts experiment runs and their durations.
type Observer struct {
	Runs     *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewObserver creates unregistered collectors.
func NewObserver() *Observer {
	return &Observer{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mlvlab",
				Subsystem: "lab",
				Name:      "runs_total",
				Help:      "Experiment runs by experiment and outcome.",
			}, []string{"experiment", "outcome"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mlvlab",
				Subsystem: "lab",
				Name:      "run_duration_seconds",
				Help:      "Wall time of experiment runs.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 7),
			}, []string{"experiment"}),
	}
}

// Register adds the collectors to r. Collectors that r already holds are
// reused, so several sessions can share one registry.
func (o *Observer) Register(r prometheus.Registerer) error {
	runs, err := register(r, o.Runs)
	if err != nil {
		return err
	}
	duration, err := register(r, o.Duration)
	if err != nil {
		return err
	}
	o.Runs = runs
	o.Duration = duration
	return nil
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) (C, error) {
	if err := r.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.Wrap(err, "registering lab collector")
	}
	return c, nil
}

func (o *Observer) observe(experiment string, seconds float64, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	o.Runs.WithLabelValues(experiment, outcome).Inc()
	o.Duration.WithLabelValues(experiment).Observe(seconds)
}
