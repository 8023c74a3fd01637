package linear_model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

func quietLogger() log.Logger {
	l, _ := log.NewTestLogger(log.LevelError)
	return l
}

func TestFitLogistic_Empty(t *testing.T) {
	res, err := FitLogistic(nil, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Empty(t, res.Boundary)
	assert.Empty(t, res.Predictions)
	assert.Zero(t, res.Metrics.Accuracy)
	assert.Zero(t, res.Metrics.Precision)
	assert.Zero(t, res.Metrics.Recall)
	assert.Zero(t, res.Metrics.F1)
}

func TestFitLogistic_Separable(t *testing.T) {
	// Class 0: points around (1.5, 1.5)
	// Class 1: points around (8.5, 8.5)
	points := []geom.LabeledPoint{
		{X: 1, Y: 1, Label: 0},
		{X: 1.5, Y: 2, Label: 0},
		{X: 2, Y: 1, Label: 0},
		{X: 8, Y: 8, Label: 1},
		{X: 8.5, Y: 9, Label: 1},
		{X: 9, Y: 8, Label: 1},
	}

	res, err := FitLogistic(points, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []geom.Label{0, 0, 0, 1, 1, 1}, res.Predictions)
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-12)
	assert.InDelta(t, 1.0, res.Metrics.F1, 1e-12)
}

func TestFitLogistic_Boundary(t *testing.T) {
	points := []geom.LabeledPoint{
		{X: 1, Y: 1, Label: 0},
		{X: 2, Y: 2, Label: 0},
		{X: 8, Y: 8, Label: 1},
		{X: 9, Y: 9, Label: 1},
	}

	res, err := FitLogistic(points, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.Len(t, res.Boundary, 101)
	assert.InDelta(t, 0.0, res.Boundary[0].X, 1e-12)
	assert.InDelta(t, 5.0, res.Boundary[50].X, 1e-9)
	assert.InDelta(t, 10.0, res.Boundary[100].X, 1e-9)

	// x と y が等しいので w1 と w2 の勾配は常に同じになる
	assert.InDelta(t, res.Weights[1], res.Weights[2], 1e-9)

	// 境界曲線は x を2回使うモデルで評価される
	w := res.Weights
	for _, p := range res.Boundary {
		want := 1 / (1 + math.Exp(-(w[0] + w[1]*p.X + w[2]*p.X)))
		assert.InDelta(t, want, p.Y, 1e-12)
	}

	// 確率は x について単調増加
	for i := 1; i < len(res.Boundary); i++ {
		assert.GreaterOrEqual(t, res.Boundary[i].Y, res.Boundary[i-1].Y)
	}
}

func TestLogisticRegression_SingleStep(t *testing.T) {
	// w = 0 なので sigmoid = 0.5, diff = -0.5
	// sum = (-0.5, -1.0, -1.5) → w = (0.005, 0.01, 0.015)
	lr := NewLogisticRegression(WithMaxIter(1), WithLogger(quietLogger()))
	require.NoError(t, lr.Fit([]geom.LabeledPoint{{X: 2, Y: 3, Label: 1}}))

	w := lr.Weights()
	assert.InDelta(t, 0.005, w[0], 1e-15)
	assert.InDelta(t, 0.01, w[1], 1e-15)
	assert.InDelta(t, 0.015, w[2], 1e-15)

	// 予測は y を使う
	p, err := lr.PredictProba(geom.Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-(0.005+0.01+0.03))), p, 1e-15)

	label, err := lr.Predict(geom.Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, geom.Positive, label)
}

func TestFitLogistic_SingleClass(t *testing.T) {
	errors.SetWarningHandler(func(error) {})

	points := []geom.LabeledPoint{
		{X: 3, Y: 4, Label: 0},
		{X: 6, Y: 2, Label: 0},
	}
	res, err := FitLogistic(points, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []geom.Label{0, 0}, res.Predictions)
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-12)
	assert.Zero(t, res.Metrics.Precision)
	assert.Zero(t, res.Metrics.F1)
}

func TestFitLogistic_Validation(t *testing.T) {
	points := []geom.LabeledPoint{{X: 1, Y: 1, Label: 1}}

	tests := []struct {
		name  string
		opts  []LogisticRegressionOption
		param string
	}{
		{name: "zero learning rate", opts: []LogisticRegressionOption{WithLearningRate(0)}, param: "learning_rate"},
		{name: "no iterations", opts: []LogisticRegressionOption{WithMaxIter(0)}, param: "max_iter"},
		{name: "zero step", opts: []LogisticRegressionOption{WithBoundary(0, 10, 0)}, param: "boundary_step"},
		{name: "reversed range", opts: []LogisticRegressionOption{WithBoundary(10, 0, 0.1)}, param: "boundary_stop"},
		{name: "NaN step", opts: []LogisticRegressionOption{WithBoundary(0, 10, math.NaN())}, param: "boundary_step"},
		{name: "infinite stop", opts: []LogisticRegressionOption{WithBoundary(0, math.Inf(1), 1)}, param: "boundary_stop"},
		{name: "infinite start", opts: []LogisticRegressionOption{WithBoundary(math.Inf(-1), 10, 1)}, param: "boundary_start"},
		{name: "NaN start", opts: []LogisticRegressionOption{WithBoundary(math.NaN(), 10, 1)}, param: "boundary_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append(tt.opts, WithLogger(quietLogger()))
			_, err := FitLogistic(points, opts...)

			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}

	_, err := FitLogistic([]geom.LabeledPoint{{X: 1, Y: 1, Label: 3}}, WithLogger(quietLogger()))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	lr := NewLogisticRegression(WithLogger(quietLogger()))

	_, err := lr.Predict(geom.Point{X: 1, Y: 1})
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	err = lr.Fit(nil)
	var empty *errors.EmptyTrainingSetError
	assert.True(t, errors.As(err, &empty))
}

func TestLogisticRegression_CustomBoundary(t *testing.T) {
	lr := NewLogisticRegression(WithBoundary(-1, 1, 0.5), WithLogger(quietLogger()))
	require.NoError(t, lr.Fit([]geom.LabeledPoint{{X: 0, Y: 0, Label: 0}, {X: 1, Y: 1, Label: 1}}))

	b := lr.Boundary()
	require.Len(t, b, 5)
	assert.InDelta(t, -1.0, b[0].X, 1e-12)
	assert.InDelta(t, 1.0, b[4].X, 1e-12)
}

func BenchmarkFitLogistic(b *testing.B) {
	points := make([]geom.LabeledPoint, 100)
	for i := range points {
		x := float64(i) / 10
		label := geom.Negative
		if x > 5 {
			label = geom.Positive
		}
		points[i] = geom.LabeledPoint{X: x, Y: 10 - x, Label: label}
	}
	logger := quietLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = FitLogistic(points, WithLogger(logger))
	}
}
