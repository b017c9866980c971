package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics is the record a training call returns: held-out error measures,
// cross-validated MAE, and per-feature relative importance.
type Metrics struct {
	ModelKind         string             `json:"model_type"`
	MAE               float64            `json:"mae"`
	RMSE              float64            `json:"rmse"`
	R2                float64            `json:"r2"`
	CVMAE             float64            `json:"cv_mae"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	ModelFile         string             `json:"model_file"`
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

func rootMeanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// rSquared is 1 - SSres/SStot. A constant actual series has no variance to
// explain; it scores 0 by convention.
func rSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := stat.Mean(actual, nil)
	ssTot := 0.0
	ssRes := 0.0
	for i := range actual {
		dt := actual[i] - mean
		ssTot += dt * dt
		dr := actual[i] - predicted[i]
		ssRes += dr * dr
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
