package lab

import (
	"strings"

	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

// Experiment selects which routine a Session runs.
type Experiment int

const (
	// LinearRegression fits a least-squares line through unlabeled points.
	LinearRegression Experiment = iota
	// LogisticRegression trains a logistic classifier and samples its boundary.
	LogisticRegression
	// KMeans clusters unlabeled points.
	KMeans
	// KNN classifies a query point by its nearest labeled neighbours.
	KNN
	// NaiveBayes fits Gaussian naive Bayes and classifies the training points.
	NaiveBayes
	// SVM classifies a query point with the fixed-boundary stub.
	SVM
)

var experimentNames = map[Experiment]string{
	LinearRegression:   "linear_regression",
	LogisticRegression: "logistic_regression",
	KMeans:             "kmeans",
	KNN:                "knn",
	NaiveBayes:         "naive_bayes",
	SVM:                "svm",
}

func (e Experiment) String() string {
	if name, ok := experimentNames[e]; ok {
		return name
	}
	return "unknown"
}

// Labeled reports whether the experiment works on class-labeled points.
// Random points of labeled experiments get a coin-flip label.
func (e Experiment) Labeled() bool {
	switch e {
	case LogisticRegression, KNN, NaiveBayes, SVM:
		return true
	default:
		return false
	}
}

// NeedsQuery reports whether running the experiment classifies a query point.
func (e Experiment) NeedsQuery() bool {
	return e == KNN || e == SVM
}

func (e Experiment) valid() bool {
	_, ok := experimentNames[e]
	return ok
}

// ParseExperiment accepts the names returned by String, case-insensitively.
func ParseExperiment(name string) (Experiment, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for e, s := range experimentNames {
		if s == n {
			return e, nil
		}
	}
	return 0, errors.NewValidationError("experiment", "unknown experiment", name)
}

// MarshalText encodes the experiment by name.
func (e Experiment) MarshalText() ([]byte, error) {
	if !e.valid() {
		return nil, errors.NewValidationError("experiment", "unknown experiment", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (e *Experiment) UnmarshalText(text []byte) error {
	parsed, err := ParseExperiment(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
