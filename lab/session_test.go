package lab

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

func newSession(t *testing.T, kind Experiment, opts ...Option) (*Session, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	s, err := NewSession(kind, append([]Option{WithSeed(1), WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return s, logger
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name string
		kind Experiment
		opts []Option
	}{
		{"unknown experiment", Experiment(42), nil},
		{"inverted bounds", KMeans, []Option{WithBounds(10, 0)}},
		{"empty bounds", KMeans, []Option{WithBounds(3, 3)}},
		{"zero k", KNN, []Option{WithDefaultK(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.kind, tt.opts...)
			var valErr *errors.ValidationError
			assert.True(t, errors.As(err, &valErr))
		})
	}
}

func TestSession_Defaults(t *testing.T) {
	s, _ := newSession(t, KNN)
	assert.Equal(t, KNN, s.Experiment())
	assert.Equal(t, DefaultK, s.DefaultK())
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Points())
}

func TestSession_AddRandomPoint(t *testing.T) {
	t.Run("labeled experiment", func(t *testing.T) {
		s, _ := newSession(t, NaiveBayes)
		seen := map[geom.Label]bool{}
		for i := 0; i < 200; i++ {
			p := s.AddRandomPoint()
			assert.GreaterOrEqual(t, p.X, DefaultMin)
			assert.Less(t, p.X, DefaultMax)
			assert.GreaterOrEqual(t, p.Y, DefaultMin)
			assert.Less(t, p.Y, DefaultMax)
			seen[p.Label] = true
		}
		assert.Equal(t, 200, s.Len())
		assert.True(t, seen[geom.Negative])
		assert.True(t, seen[geom.Positive])
	})

	t.Run("unlabeled experiment", func(t *testing.T) {
		s, _ := newSession(t, LinearRegression)
		for i := 0; i < 50; i++ {
			assert.Equal(t, geom.Negative, s.AddRandomPoint().Label)
		}
	})

	t.Run("custom bounds", func(t *testing.T) {
		s, _ := newSession(t, KMeans, WithBounds(-1, 1))
		for i := 0; i < 50; i++ {
			p := s.AddRandomPoint()
			assert.True(t, p.X >= -1 && p.X < 1)
			assert.True(t, p.Y >= -1 && p.Y < 1)
		}
	})

	t.Run("same seed same points", func(t *testing.T) {
		a, _ := newSession(t, KNN)
		b, _ := newSession(t, KNN)
		for i := 0; i < 10; i++ {
			a.AddRandomPoint()
			b.AddRandomPoint()
		}
		assert.Equal(t, a.LabeledPoints(), b.LabeledPoints())
		assert.Equal(t, a.RandomQuery(), b.RandomQuery())
	})
}

func TestSession_PointsAreCopies(t *testing.T) {
	s, _ := newSession(t, KNN)
	require.NoError(t, s.AddLabeledPoint(1, 2, geom.Positive))
	s.AddPoint(3, 4)

	labeled := s.LabeledPoints()
	assert.Equal(t, []geom.LabeledPoint{{X: 1, Y: 2, Label: 1}, {X: 3, Y: 4, Label: 0}}, labeled)
	labeled[0].X = 99
	assert.Equal(t, 1.0, s.LabeledPoints()[0].X)
	assert.Equal(t, []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, s.Points())

	var valErr *errors.ValidationError
	assert.True(t, errors.As(s.AddLabeledPoint(0, 0, 2), &valErr))
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.LabeledPoints())
}

func TestSession_RunLinearRegression(t *testing.T) {
	s, _ := newSession(t, LinearRegression)
	s.AddPoint(0, 1)
	s.AddPoint(1, 3)
	s.AddPoint(2, 5)
	s.AddPoint(3, 7)

	res, err := s.RunLinearRegression()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Slope, 1e-12)
	assert.InDelta(t, 1.0, res.Intercept, 1e-12)
	assert.InDelta(t, 1.0, res.R2, 1e-12)
	assert.InDelta(t, 0.0, res.MSE, 1e-12)
}

func TestSession_RunKMeans(t *testing.T) {
	s, _ := newSession(t, KMeans)
	s.AddPoint(0, 0)
	s.AddPoint(2, 0)
	s.AddPoint(4, 3)

	res, err := s.RunKMeans(1)
	require.NoError(t, err)
	require.Len(t, res.Centroids, 1)
	assert.InDelta(t, 2.0, res.Centroids[0].X, 1e-12)
	assert.InDelta(t, 1.0, res.Centroids[0].Y, 1e-12)

	_, err = s.RunKMeans(4)
	var unique *errors.InsufficientUniquePointsError
	assert.True(t, errors.As(err, &unique))
}

func TestSession_RunErrorsAreReturnedUnchanged(t *testing.T) {
	s, logger := newSession(t, KNN)

	_, err := s.RunKNN(geom.Point{X: 1, Y: 1}, 3)
	var empty *errors.EmptyTrainingSetError
	require.True(t, errors.As(err, &empty))
	assert.True(t, logger.ContainsMessage("experiment failed"))
	assert.True(t, logger.ContainsField(log.ExperimentKey, "knn"))

	_, err = s.RunNaiveBayes()
	assert.True(t, errors.As(err, &empty))

	_, err = s.RunLinearRegression()
	var insufficient *errors.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestSession_RunClassifiers(t *testing.T) {
	s, logger := newSession(t, KNN)
	for _, p := range []geom.LabeledPoint{
		{X: 1.0, Y: 1.2, Label: 0},
		{X: 1.4, Y: 0.8, Label: 0},
		{X: 0.8, Y: 1.0, Label: 0},
		{X: 8.9, Y: 9.1, Label: 1},
		{X: 9.2, Y: 8.7, Label: 1},
		{X: 8.6, Y: 9.3, Label: 1},
	} {
		require.NoError(t, s.AddLabeledPoint(p.X, p.Y, p.Label))
	}

	label, err := s.RunKNN(geom.Point{X: 9, Y: 9}, 3)
	require.NoError(t, err)
	assert.Equal(t, geom.Positive, label)
	assert.True(t, logger.ContainsField(log.LabelKey, float64(1)))

	label, err = s.RunSVM(geom.Point{X: 4, Y: 9})
	require.NoError(t, err)
	assert.Equal(t, geom.Negative, label)

	nb, err := s.RunNaiveBayes()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, nb.Metrics.Accuracy, 1e-12)

	lr, err := s.RunLogisticRegression()
	require.NoError(t, err)
	assert.Len(t, lr.Boundary, 101)
	assert.Len(t, lr.Predictions, 6)
}

func TestSession_RunSVMEmpty(t *testing.T) {
	s, _ := newSession(t, SVM)
	label, err := s.RunSVM(geom.Point{X: 9, Y: 9})
	require.NoError(t, err)
	assert.Equal(t, geom.Negative, label)
}

func TestSession_Run(t *testing.T) {
	query := geom.Point{X: 7, Y: 7}

	tests := []struct {
		kind  Experiment
		check func(t *testing.T, res Result)
	}{
		{LinearRegression, func(t *testing.T, res Result) { require.NotNil(t, res.Linear) }},
		{LogisticRegression, func(t *testing.T, res Result) { require.NotNil(t, res.Logistic) }},
		{KMeans, func(t *testing.T, res Result) {
			require.NotNil(t, res.KMeans)
			assert.Len(t, res.KMeans.Centroids, DefaultK)
		}},
		{KNN, func(t *testing.T, res Result) {
			require.NotNil(t, res.Label)
			assert.Equal(t, query, *res.Query)
		}},
		{NaiveBayes, func(t *testing.T, res Result) { require.NotNil(t, res.NaiveBayes) }},
		{SVM, func(t *testing.T, res Result) {
			require.NotNil(t, res.Label)
			assert.Equal(t, geom.Positive, *res.Label)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, _ := newSession(t, tt.kind)
			for _, p := range []geom.LabeledPoint{
				{X: 1, Y: 2, Label: 0}, {X: 2, Y: 1, Label: 0}, {X: 1.5, Y: 1, Label: 0},
				{X: 8, Y: 9, Label: 1}, {X: 9, Y: 7, Label: 1}, {X: 8.5, Y: 8, Label: 1},
			} {
				require.NoError(t, s.AddLabeledPoint(p.X, p.Y, p.Label))
			}

			res, err := s.Run(Params{Query: &query})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Experiment)
			tt.check(t, res)
		})
	}
}

func TestSession_RunRandomQuery(t *testing.T) {
	s, _ := newSession(t, SVM)
	s.AddRandomPoint()

	res, err := s.Run(Params{})
	require.NoError(t, err)
	require.NotNil(t, res.Query)
	assert.Equal(t, res.Query.X > 5, *res.Label == geom.Positive)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s, _ := newSession(t, KNN)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AddRandomPoint()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.LabeledPoints()
				_, _ = s.RunSVM(s.RandomQuery())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, s.Len())
}

func TestExperiment(t *testing.T) {
	for _, name := range []string{"linear_regression", "logistic_regression", "kmeans", "knn", "naive_bayes", "svm"} {
		e, err := ParseExperiment(name)
		require.NoError(t, err)
		assert.Equal(t, name, e.String())
	}

	e, err := ParseExperiment(" KNN ")
	require.NoError(t, err)
	assert.Equal(t, KNN, e)
	assert.True(t, e.Labeled())
	assert.True(t, e.NeedsQuery())
	assert.False(t, KMeans.Labeled())

	_, err = ParseExperiment("svr")
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	data, err := json.Marshal(Result{Experiment: NaiveBayes})
	require.NoError(t, err)
	assert.JSONEq(t, `{"experiment":"naive_bayes"}`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NaiveBayes, decoded.Experiment)
}

func errorRecords(t *testing.T, logger *log.TestLogger) int {
	t.Helper()
	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if e["level"] == "ERROR" {
			n++
		}
	}
	return n
}

func TestSession_FailedRunLogsOneError(t *testing.T) {
	t.Run("naive bayes zero variance", func(t *testing.T) {
		s, logger := newSession(t, NaiveBayes)
		require.NoError(t, s.AddLabeledPoint(1, 1, geom.Negative))
		require.NoError(t, s.AddLabeledPoint(1, 2, geom.Negative))
		require.NoError(t, s.AddLabeledPoint(5, 5, geom.Positive))
		require.NoError(t, s.AddLabeledPoint(6, 7, geom.Positive))

		_, err := s.RunNaiveBayes()
		var degenerate *errors.DegenerateVarianceError
		require.True(t, errors.As(err, &degenerate))
		assert.Equal(t, 1, errorRecords(t, logger))
	})

	t.Run("kmeans too few unique points", func(t *testing.T) {
		s, logger := newSession(t, KMeans)
		s.AddPoint(1, 1)
		s.AddPoint(1, 1)

		_, err := s.RunKMeans(2)
		var unique *errors.InsufficientUniquePointsError
		require.True(t, errors.As(err, &unique))
		assert.Equal(t, 1, errorRecords(t, logger))
	})
}
