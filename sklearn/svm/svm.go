// Package svm provides a placeholder classifier standing in for a linear SVM.
//
// No margin is optimised: the decision boundary is the fixed vertical line
// x = DefaultThreshold.
package svm

import (
	"math"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/metrics"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

// DefaultThreshold is the x coordinate of the decision boundary.
const DefaultThreshold = 5.0

// Classify returns 0 when training is empty, otherwise 1 iff query.X > 5.
// The training points are only consulted for emptiness.
func Classify(training []geom.LabeledPoint, query geom.Point) geom.Label {
	if len(training) == 0 {
		return geom.Negative
	}
	return side(query, DefaultThreshold)
}

func side(query geom.Point, threshold float64) geom.Label {
	if query.X > threshold {
		return geom.Positive
	}
	return geom.Negative
}

// ThresholdClassifier wraps the vertical-line rule as an estimator.
type ThresholdClassifier struct {
	model.BaseEstimator

	threshold float64
	logger    log.Logger
}

// Option configures a ThresholdClassifier.
type Option func(*ThresholdClassifier)

// WithThreshold moves the boundary.
func WithThreshold(x float64) Option {
	return func(c *ThresholdClassifier) {
		c.threshold = x
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *ThresholdClassifier) {
		c.logger = logger
	}
}

// NewThresholdClassifier creates a classifier with the boundary at
// DefaultThreshold unless overridden.
func NewThresholdClassifier(opts ...Option) *ThresholdClassifier {
	c := &ThresholdClassifier{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("svm")
	}
	return c
}

// Fit records the training set size. An empty set is accepted; every
// prediction is then 0.
func (c *ThresholdClassifier) Fit(points []geom.LabeledPoint) error {
	if math.IsNaN(c.threshold) || math.IsInf(c.threshold, 0) {
		return errors.NewValidationError("threshold", "must be finite", c.threshold)
	}
	for _, p := range points {
		if !p.Label.Valid() {
			return errors.NewValidationError("label", "must be 0 or 1", int(p.Label))
		}
	}
	c.SetFitted(len(points))

	c.logger.Debug("threshold classifier fitted",
		log.ModelNameKey, "ThresholdClassifier",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(points),
		log.ThresholdKey, c.threshold,
	)
	return nil
}

// Predict returns 1 iff query.X is right of the boundary, and 0 for every
// query when the training set was empty.
func (c *ThresholdClassifier) Predict(query geom.Point) (geom.Label, error) {
	if !c.IsFitted() {
		return 0, errors.NewNotFittedError("ThresholdClassifier", "Predict")
	}
	if c.NSamples() == 0 {
		return geom.Negative, nil
	}
	return side(query, c.threshold), nil
}

// Score evaluates predictions on labeled points.
func (c *ThresholdClassifier) Score(points []geom.LabeledPoint) (metrics.EvaluationMetrics, error) {
	return model.Score(c, points)
}

// Threshold returns the boundary's x coordinate.
func (c *ThresholdClassifier) Threshold() float64 {
	return c.threshold
}
