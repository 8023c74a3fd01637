package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

func labels(v ...int) []geom.Label {
	out := make([]geom.Label, len(v))
	for i, x := range v {
		out[i] = geom.Label(x)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	errors.SetWarningHandler(func(error) {})

	tests := []struct {
		name        string
		predictions []geom.Label
		labels      []geom.Label
		want        EvaluationMetrics
	}{
		{
			name:        "perfect",
			predictions: labels(0, 1, 1, 0),
			labels:      labels(0, 1, 1, 0),
			want:        EvaluationMetrics{Accuracy: 1, Precision: 1, Recall: 1, F1: 1},
		},
		{
			name:        "mixed",
			predictions: labels(1, 1, 0, 0, 1),
			labels:      labels(1, 0, 1, 0, 1),
			// tp=2 fp=1 fn=1 tn=1
			want: EvaluationMetrics{Accuracy: 0.6, Precision: 2.0 / 3.0, Recall: 2.0 / 3.0, F1: 2.0 / 3.0},
		},
		{
			name:        "no predicted positives",
			predictions: labels(0, 0, 0),
			labels:      labels(1, 0, 1),
			want:        EvaluationMetrics{Accuracy: 1.0 / 3.0},
		},
		{
			name:        "no actual positives",
			predictions: labels(1, 0),
			labels:      labels(0, 0),
			want:        EvaluationMetrics{Accuracy: 0.5},
		},
		{
			name: "empty",
			want: EvaluationMetrics{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.predictions, tt.labels)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Accuracy, got.Accuracy, 1e-12)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-12)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-12)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-12)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(labels(0, 1), labels(0))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = Evaluate(labels(0, 2), labels(0, 1))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestEvaluate_UndefinedMetricWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	_, err := Evaluate(labels(0, 0), labels(0, 0))
	require.NoError(t, err)

	require.Len(t, warnings, 2)
	var undefined *errors.UndefinedMetricWarning
	require.True(t, errors.As(warnings[0], &undefined))
	assert.Equal(t, "precision", undefined.Metric)
}

// Metrics stay within [0,1] and F1 vanishes whenever precision or recall does.
func TestEvaluate_Bounds(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(20)
		pred := make([]geom.Label, n)
		act := make([]geom.Label, n)
		for i := 0; i < n; i++ {
			pred[i] = geom.Label(rng.Intn(2))
			act[i] = geom.Label(rng.Intn(2))
		}

		m, err := Evaluate(pred, act)
		require.NoError(t, err)

		for _, v := range []float64{m.Accuracy, m.Precision, m.Recall, m.F1} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		if m.Precision == 0 || m.Recall == 0 {
			assert.Zero(t, m.F1)
		}
	}
}

func TestConfusionMatrix(t *testing.T) {
	c, err := ConfusionMatrix(labels(1, 1, 0, 0, 1), labels(1, 0, 1, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, Confusion{TruePositives: 2, FalsePositives: 1, FalseNegatives: 1, TrueNegatives: 1}, c)
	assert.Equal(t, 5, c.Total())
}
