// Package neighbors implements k-nearest-neighbour classification of 2D points.
package neighbors

import (
	"sort"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/metrics"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

// DefaultNeighbors is the k used when none is configured.
const DefaultNeighbors = 3

// Neighbor is a training point together with its distance to a query.
type Neighbor struct {
	geom.LabeledPoint
	Distance float64 `json:"distance"`
}

// Classify returns the majority label among the k training points nearest to
// query. When k exceeds the training set size every point votes.
//
// An even vote resolves to label 0: label 1 wins only with strictly more votes.
func Classify(training []geom.LabeledPoint, query geom.Point, k int) (geom.Label, error) {
	if err := validate("neighbors.Classify", training, k); err != nil {
		return 0, err
	}
	return vote(nearest(training, query, k)), nil
}

func validate(op string, training []geom.LabeledPoint, k int) error {
	if k < 1 {
		return errors.NewValidationError("k", "must be at least 1", k)
	}
	if len(training) == 0 {
		return errors.NewEmptyTrainingSetError(op)
	}
	for _, p := range training {
		if !p.Label.Valid() {
			return errors.NewValidationError("label", "must be 0 or 1", int(p.Label))
		}
	}
	return nil
}

// nearest sorts by ascending distance. Equal distances keep training order.
func nearest(training []geom.LabeledPoint, query geom.Point, k int) []Neighbor {
	all := make([]Neighbor, len(training))
	for i, p := range training {
		all[i] = Neighbor{LabeledPoint: p, Distance: geom.Distance(p.Point(), query)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

func vote(neighbors []Neighbor) geom.Label {
	var votes [2]int
	for _, n := range neighbors {
		votes[n.Label]++
	}
	if votes[geom.Positive] > votes[geom.Negative] {
		return geom.Positive
	}
	return geom.Negative
}

// KNeighborsClassifier keeps a copy of its training points and classifies
// queries with Classify.
type KNeighborsClassifier struct {
	model.BaseEstimator

	nNeighbors int
	training   []geom.LabeledPoint
	logger     log.Logger
}

// Option configures a KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// WithNeighbors sets k.
func WithNeighbors(k int) Option {
	return func(c *KNeighborsClassifier) {
		c.nNeighbors = k
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *KNeighborsClassifier) {
		c.logger = logger
	}
}

// NewKNeighborsClassifier creates a classifier with k = DefaultNeighbors
// unless overridden.
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	c := &KNeighborsClassifier{nNeighbors: DefaultNeighbors}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("neighbors")
	}
	return c
}

// Fit validates and stores the training points.
func (c *KNeighborsClassifier) Fit(points []geom.LabeledPoint) error {
	if err := validate("KNeighborsClassifier.Fit", points, c.nNeighbors); err != nil {
		return err
	}

	c.training = append(c.training[:0:0], points...)
	c.SetFitted(len(points))

	c.logger.Debug("knn training set stored",
		log.ModelNameKey, "KNeighborsClassifier",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(points),
		log.KKey, c.nNeighbors,
	)
	return nil
}

// Predict classifies query against the stored training points.
func (c *KNeighborsClassifier) Predict(query geom.Point) (geom.Label, error) {
	if !c.IsFitted() {
		return 0, errors.NewNotFittedError("KNeighborsClassifier", "Predict")
	}
	return vote(nearest(c.training, query, c.nNeighbors)), nil
}

// PredictAll classifies every query.
func (c *KNeighborsClassifier) PredictAll(queries []geom.Point) ([]geom.Label, error) {
	return model.PredictAll(c, queries)
}

// Score evaluates predictions on labeled points.
func (c *KNeighborsClassifier) Score(points []geom.LabeledPoint) (metrics.EvaluationMetrics, error) {
	return model.Score(c, points)
}

// Neighbors returns the k nearest training points to query, closest first.
func (c *KNeighborsClassifier) Neighbors(query geom.Point) ([]Neighbor, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "Neighbors")
	}
	return nearest(c.training, query, c.nNeighbors), nil
}

// K returns the configured number of neighbours.
func (c *KNeighborsClassifier) K() int {
	return c.nNeighbors
}
