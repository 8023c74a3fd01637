// Standard attribute keys for mlvlab log records. Keys are hierarchical
// ("model.name", "data.samples") so that records can be filtered by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the routine, e.g. "KMeans", "GaussianNB".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging, e.g. "cluster", "lab".
	ComponentKey = "ml.component"

	// ExperimentKey names the lab experiment a session belongs to.
	ExperimentKey = "lab.experiment"

	// SessionKey carries the lab session id.
	SessionKey = "lab.session"
)

// Data Shape
const (
	// SamplesKey indicates the number of points processed.
	SamplesKey = "data.samples"

	// Class0CountKey and Class1CountKey record the number of points per label.
	Class0CountKey = "data.class0"
	Class1CountKey = "data.class1"
)

// Performance and Results
const (
	DurationMsKey = "perf.duration_ms"

	AccuracyKey  = "metrics.accuracy"
	PrecisionKey = "metrics.precision"
	RecallKey    = "metrics.recall"
	F1Key        = "metrics.f1"
	R2ScoreKey   = "metrics.r2_score"
	MSEKey       = "metrics.mse"
	InertiaKey   = "metrics.inertia"

	// IterationKey records the iteration count of iterative routines.
	IterationKey = "training.iteration"

	// ConvergedKey reports whether an iterative routine converged.
	ConvergedKey = "training.converged"
)

// Prediction Context
const (
	PredsKey     = "preds.count"
	LabelKey     = "preds.label"
	ThresholdKey = "preds.threshold"
)

// Hyperparameters and Configuration
const (
	KKey            = "hyperparams.k"
	LearningRateKey = "hyperparams.learning_rate"
	MaxIterKey      = "hyperparams.max_iter"
	TolKey          = "hyperparams.tol"
	RandomSeedKey   = "config.random_seed"
)

// Error and Warning Context
const (
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
	ErrorKey      = "error"
	DetailKey     = "error.detail"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
)
