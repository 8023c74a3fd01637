package linear_model

import (
	"math"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/metrics"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

const (
	// DefaultLearningRate is the gradient descent step size.
	DefaultLearningRate = 0.01
	// DefaultMaxIter is the fixed number of batch gradient descent iterations.
	DefaultMaxIter = 1000
	// DecisionThreshold separates the two classes on the predicted probability.
	DecisionThreshold = 0.5
)

// LogisticResult is the output of FitLogistic.
type LogisticResult struct {
	// Weights holds w0 (bias), w1 and w2.
	Weights     [3]float64                `json:"weights"`
	Boundary    []geom.Point              `json:"boundary_points"`
	Predictions []geom.Label              `json:"predictions"`
	Metrics     metrics.EvaluationMetrics `json:"metrics"`
}

// LogisticRegression is a binary classifier on 2D points trained with
// batch gradient descent.
//
// Training and the boundary curve use sigmoid(w0 + w1·x + w2·x): both weights
// multiply the x coordinate. Predictions and evaluation use
// sigmoid(w0 + w1·x + w2·y). The gradient for w2 is accumulated against y in
// both cases.
type LogisticRegression struct {
	model.BaseEstimator

	learningRate  float64
	maxIter       int
	boundaryStart float64
	boundaryStop  float64
	boundaryStep  float64
	logger        log.Logger

	weights [3]float64
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		learningRate:  DefaultLearningRate,
		maxIter:       DefaultMaxIter,
		boundaryStart: 0,
		boundaryStop:  10,
		boundaryStep:  0.1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.logger == nil {
		lr.logger = log.GetLoggerWithName("linear_model")
	}
	return lr
}

// WithLearningRate sets the gradient descent step size
func WithLearningRate(rate float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = rate
	}
}

// WithMaxIter sets the number of gradient descent iterations
func WithMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithBoundary sets the x range and step used to sample the boundary curve
func WithBoundary(start, stop, step float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.boundaryStart = start
		lr.boundaryStop = stop
		lr.boundaryStep = step
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.logger = logger
	}
}

// FitLogistic trains a LogisticRegression on points and returns the sampled
// boundary curve together with the evaluation on the training points.
// An empty input yields an empty boundary and all-zero metrics.
func FitLogistic(points []geom.LabeledPoint, opts ...LogisticRegressionOption) (LogisticResult, error) {
	lr := NewLogisticRegression(opts...)
	if err := lr.validateParams(); err != nil {
		return LogisticResult{}, err
	}

	if len(points) == 0 {
		return LogisticResult{
			Boundary:    []geom.Point{},
			Predictions: []geom.Label{},
		}, nil
	}

	if err := lr.Fit(points); err != nil {
		return LogisticResult{}, err
	}

	predictions := make([]geom.Label, len(points))
	for i, p := range points {
		predictions[i] = lr.predict(p.X, p.Y)
	}
	m, err := metrics.Evaluate(predictions, geom.Labels(points))
	if err != nil {
		return LogisticResult{}, err
	}

	lr.logger.Info("logistic regression evaluated",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, len(points),
		log.AccuracyKey, m.Accuracy,
		log.F1Key, m.F1,
	)

	return LogisticResult{
		Weights:     lr.weights,
		Boundary:    lr.Boundary(),
		Predictions: predictions,
		Metrics:     m,
	}, nil
}

func (lr *LogisticRegression) validateParams() error {
	if lr.learningRate <= 0 || math.IsNaN(lr.learningRate) {
		return errors.NewValidationError("learning_rate", "must be positive", lr.learningRate)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}
	for _, b := range []struct {
		name  string
		value float64
	}{
		{"boundary_start", lr.boundaryStart},
		{"boundary_stop", lr.boundaryStop},
		{"boundary_step", lr.boundaryStep},
	} {
		if err := errors.CheckScalar(b.name, b.value, 0); err != nil {
			return errors.NewValidationError(b.name, "must be finite", b.value)
		}
	}
	if lr.boundaryStep <= 0 {
		return errors.NewValidationError("boundary_step", "must be positive", lr.boundaryStep)
	}
	if lr.boundaryStop < lr.boundaryStart {
		return errors.NewValidationError("boundary_stop", "must not be below boundary_start", lr.boundaryStop)
	}
	return nil
}

// Fit trains the weights with batch gradient descent starting from zero.
func (lr *LogisticRegression) Fit(points []geom.LabeledPoint) error {
	if err := lr.validateParams(); err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.NewEmptyTrainingSetError("LogisticRegression.Fit")
	}
	for _, p := range points {
		if !p.Label.Valid() {
			return errors.NewValidationError("label", "must be 0 or 1", int(p.Label))
		}
	}

	lr.Reset()
	var w [3]float64

	for iter := 0; iter < lr.maxIter; iter++ {
		var sum0, sum1, sum2 float64
		for _, p := range points {
			diff := sigmoid(w[0]+w[1]*p.X+w[2]*p.X) - float64(p.Label)
			sum0 += diff
			sum1 += diff * p.X
			sum2 += diff * p.Y
		}
		w[0] -= lr.learningRate * sum0
		w[1] -= lr.learningRate * sum1
		w[2] -= lr.learningRate * sum2

		if err := errors.CheckNumericalStability("gradient_update", w[:], iter); err != nil {
			lr.logger.Debug("gradient descent diverged", log.ErrorKey, err, log.IterationKey, iter)
			return err
		}
	}

	lr.weights = w
	lr.SetFitted(len(points))

	lr.logger.Debug("logistic regression fitted",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(points),
		log.LearningRateKey, lr.learningRate,
		log.MaxIterKey, lr.maxIter,
	)
	return nil
}

// Boundary samples sigmoid(w0 + w1·x + w2·x) at x = start, start+step, …, stop.
// The default range gives 101 samples from 0 to 10.
func (lr *LogisticRegression) Boundary() []geom.Point {
	// 浮動小数点の誤差で最後の点を落とさないよう、サンプル数を先に決める
	n := int(math.Floor((lr.boundaryStop-lr.boundaryStart)/lr.boundaryStep+1e-9)) + 1
	out := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		x := lr.boundaryStart + float64(i)*lr.boundaryStep
		out[i] = geom.Point{X: x, Y: sigmoid(lr.weights[0] + lr.weights[1]*x + lr.weights[2]*x)}
	}
	return out
}

// PredictProba returns the probability that query belongs to class 1.
func (lr *LogisticRegression) PredictProba(query geom.Point) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	return lr.proba(query.X, query.Y), nil
}

// Predict returns 1 when the probability exceeds DecisionThreshold.
func (lr *LogisticRegression) Predict(query geom.Point) (geom.Label, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LogisticRegression", "Predict")
	}
	return lr.predict(query.X, query.Y), nil
}

// Weights returns w0, w1 and w2.
func (lr *LogisticRegression) Weights() [3]float64 {
	return lr.weights
}

func (lr *LogisticRegression) proba(x, y float64) float64 {
	return sigmoid(lr.weights[0] + lr.weights[1]*x + lr.weights[2]*y)
}

func (lr *LogisticRegression) predict(x, y float64) geom.Label {
	if lr.proba(x, y) > DecisionThreshold {
		return geom.Positive
	}
	return geom.Negative
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
