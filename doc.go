// Package mlvlab is the numeric core of a "virtual lab" that lets students
// watch six classic machine-learning algorithms work on a handful of 2D
// points.
//
// Every algorithm is a small pure routine over a caller-owned slice of
// points. Nothing is vectorised or tuned for large inputs; the routines are
// meant to be read.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/mlvlab/core/geom"
//	    "github.com/YuminosukeSato/mlvlab/linear"
//	)
//
//	func main() {
//	    res, err := linear.FitLine([]geom.Point{{X: 0, Y: 1}, {X: 1, Y: 3}, {X: 2, Y: 5}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("y = %.1fx + %.1f (R²=%.2f)\n", res.Slope, res.Intercept, res.R2)
//	}
//
// A lab.Session keeps the points of one experiment and runs its routine:
//
//	s, _ := lab.NewSession(lab.KMeans, lab.WithSeed(1))
//	for i := 0; i < 30; i++ {
//	    s.AddRandomPoint()
//	}
//	res, err := s.RunKMeans(3)
//
// # Packages
//
//   - core/geom: points, labels, Euclidean distance
//   - core/model: shared estimator state and the PointClassifier interface
//   - metrics: accuracy, precision, recall, F1, MSE, R²
//   - linear: least-squares line fit
//   - sklearn/linear_model: logistic regression by batch gradient descent
//   - sklearn/cluster: k-means
//   - sklearn/neighbors: k-nearest-neighbour classification
//   - sklearn/naive_bayes: Gaussian naive Bayes
//   - sklearn/svm: fixed-boundary placeholder for a linear SVM
//   - lab: experiment sessions (point management, random points, run)
//   - pkg/errors: typed errors with stack traces and the warning channel
//   - pkg/log: zerolog-backed structured logging
//
// # Errors
//
// Degenerate inputs fail with typed errors instead of producing NaN:
// InsufficientDataError, DegenerateVarianceError, EmptyTrainingSetError and
// InsufficientUniquePointsError. Match them with errors.As from pkg/errors.
// Non-fatal conditions (a k-means cluster emptying, an undefined precision)
// are reported through errors.Warn; log.SetupLogger routes them to the
// logger.
package mlvlab
