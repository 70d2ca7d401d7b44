// Standard attribute keys for structured log entries.
//
// Keys are dotted ("model.name", "data.samples") so entries can be filtered by
// prefix in a log pipeline.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "SoftmaxRegression".
	ModelNameKey = "model.name"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the entry.
	ComponentKey = "ml.component"

	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"

	// DroppedRowsKey counts rows removed because of missing values.
	DroppedRowsKey = "data.dropped_rows"
)

// Performance and training progress.
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"
	LossKey       = "metrics.loss"
	EpochKey      = "training.epoch"
)

// Hyperparameters and search progress.
const (
	LearningRateKey = "hyperparams.learning_rate"
	EpochsKey       = "hyperparams.epochs"
	GridCellKey     = "search.cell"
	GridSizeKey     = "search.size"
	NJobsKey        = "search.n_jobs"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	SuggestionKey = "error.suggestion"
)

// Standard values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationSearch    = "search"
	OperationLoad      = "load"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorDegenerateFeature = "DEGENERATE_FEATURE"
)
