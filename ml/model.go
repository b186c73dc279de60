package ml

import "errors"

// FeatureCount is the fixed width of every feature vector the service handles.
const FeatureCount = 10

// NumClasses is fixed: the target is binary.
const NumClasses = 2

var (
	ErrNotTrained     = errors.New("model not trained")
	ErrDimension      = errors.New("feature vector has wrong dimension")
	ErrDegenerateData = errors.New("training data must contain at least 2 classes")
)

type Classifier interface {
	Predict(features []float64) (int, float64, error)
	PredictProba(features []float64) ([]float64, error)
}
