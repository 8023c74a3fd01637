package lab

import (
	"time"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/linear"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
	"github.com/YuminosukeSato/mlvlab/sklearn/cluster"
	"github.com/YuminosukeSato/mlvlab/sklearn/linear_model"
	"github.com/YuminosukeSato/mlvlab/sklearn/naive_bayes"
	"github.com/YuminosukeSato/mlvlab/sklearn/neighbors"
	"github.com/YuminosukeSato/mlvlab/sklearn/svm"
)

// Params are the per-run inputs. K is used by k-means and KNN, Query by KNN
// and SVM. A zero K means the session default; a nil Query draws a random
// point.
type Params struct {
	K     int
	Query *geom.Point
}

// Result holds the output of exactly one routine, selected by Experiment.
type Result struct {
	Experiment Experiment                   `json:"experiment"`
	Linear     *linear.Result               `json:"linear,omitempty"`
	Logistic   *linear_model.LogisticResult `json:"logistic,omitempty"`
	KMeans     *cluster.Result              `json:"kmeans,omitempty"`
	NaiveBayes *naive_bayes.Result          `json:"naive_bayes,omitempty"`
	// Query and Label are set for KNN and SVM.
	Query *geom.Point `json:"query,omitempty"`
	Label *geom.Label `json:"label,omitempty"`
}

// Run runs the session's experiment over a snapshot of its points.
func (s *Session) Run(params Params) (Result, error) {
	res := Result{Experiment: s.kind}

	k := params.K
	if k == 0 {
		k = s.defaultK
	}
	var query geom.Point
	if s.kind.NeedsQuery() {
		if params.Query != nil {
			query = *params.Query
		} else {
			query = s.RandomQuery()
		}
		res.Query = &query
	}

	switch s.kind {
	case LinearRegression:
		r, err := s.RunLinearRegression()
		if err != nil {
			return Result{}, err
		}
		res.Linear = &r
	case LogisticRegression:
		r, err := s.RunLogisticRegression()
		if err != nil {
			return Result{}, err
		}
		res.Logistic = &r
	case KMeans:
		r, err := s.RunKMeans(k)
		if err != nil {
			return Result{}, err
		}
		res.KMeans = &r
	case KNN:
		label, err := s.RunKNN(query, k)
		if err != nil {
			return Result{}, err
		}
		res.Label = &label
	case NaiveBayes:
		r, err := s.RunNaiveBayes()
		if err != nil {
			return Result{}, err
		}
		res.NaiveBayes = &r
	case SVM:
		label, err := s.RunSVM(query)
		if err != nil {
			return Result{}, err
		}
		res.Label = &label
	}
	return res, nil
}

// RunLinearRegression fits a line through the points.
func (s *Session) RunLinearRegression() (res linear.Result, err error) {
	points := s.Points()
	err = s.run("linear_regression", len(points), func() (err error) {
		res, err = linear.FitLine(points)
		if err == nil {
			s.logger.Info("line fitted",
				log.R2ScoreKey, res.R2,
				log.MSEKey, res.MSE,
			)
		}
		return err
	})
	return res, err
}

// RunLogisticRegression trains a logistic regression on the labeled points.
func (s *Session) RunLogisticRegression() (res linear_model.LogisticResult, err error) {
	points := s.LabeledPoints()
	err = s.run("logistic_regression", len(points), func() (err error) {
		res, err = linear_model.FitLogistic(points, linear_model.WithLogger(s.logger))
		return err
	})
	return res, err
}

// RunKMeans clusters the points into k groups. Initial centroids are drawn
// from the session's random source.
func (s *Session) RunKMeans(k int) (res cluster.Result, err error) {
	points := s.Points()
	seed := s.nextSeed()
	err = s.run("kmeans", len(points), func() (err error) {
		res, err = cluster.FitKMeans(points, k,
			cluster.WithRandomState(seed),
			cluster.WithLogger(s.logger),
		)
		return err
	})
	return res, err
}

// RunKNN classifies query by majority vote of its k nearest points.
func (s *Session) RunKNN(query geom.Point, k int) (label geom.Label, err error) {
	points := s.LabeledPoints()
	err = s.run("knn", len(points), func() (err error) {
		label, err = neighbors.Classify(points, query, k)
		if err == nil {
			s.logger.Info("query classified",
				log.KKey, k,
				log.LabelKey, int(label),
			)
		}
		return err
	})
	return label, err
}

// RunNaiveBayes fits Gaussian naive Bayes and classifies the training points.
func (s *Session) RunNaiveBayes() (res naive_bayes.Result, err error) {
	points := s.LabeledPoints()
	err = s.run("naive_bayes", len(points), func() (err error) {
		res, err = naive_bayes.FitPredict(points, naive_bayes.WithLogger(s.logger))
		return err
	})
	return res, err
}

// RunSVM classifies query with the fixed x = 5 boundary. It returns 0 while
// the session is empty.
func (s *Session) RunSVM(query geom.Point) (label geom.Label, err error) {
	points := s.LabeledPoints()
	err = s.run("svm", len(points), func() error {
		label = svm.Classify(points, query)
		s.logger.Info("query classified",
			log.LabelKey, int(label),
			log.ThresholdKey, svm.DefaultThreshold,
		)
		return nil
	})
	return label, err
}

// run executes fn, turning a panic into a PanicError, and logs the outcome.
// Errors from fn are returned unchanged.
func (s *Session) run(name string, samples int, fn func() error) error {
	start := time.Now()
	err := errors.SafeExecute("lab."+name, fn)
	elapsed := time.Since(start)
	s.observer.observe(name, elapsed.Seconds(), err)

	if err != nil {
		s.logger.Error("experiment failed", err,
			log.ModelNameKey, name,
			log.SamplesKey, samples,
		)
		return err
	}
	s.logger.Debug("experiment finished",
		log.ModelNameKey, name,
		log.SamplesKey, samples,
		log.DurationMsKey, float64(elapsed.Microseconds())/1000,
	)
	return nil
}
