package ml

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticData builds a learnable regression set: the label tracks the first
// feature with mild noise.
func syntheticData(n int) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(7))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		base := 10 + rng.Float64()*20
		x[i] = []float64{base, rng.Float64(), float64(i % 7)}
		y[i] = base + rng.Float64()*2
	}
	return x, y
}

var testFeatures = []string{"PTS_L3", "HOME_GAME", "DAY_OF_WEEK"}

func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := NewPredictor(t.TempDir())
	require.NoError(t, err)
	return p
}

func TestTrainEmptyInput(t *testing.T) {
	p := newTestPredictor(t)
	_, err := p.Train(nil, nil, testFeatures, "PTS", KindRandomForest)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestPredictWithoutModel(t *testing.T) {
	p := newTestPredictor(t)
	_, err := p.Predict(map[string]float64{"PTS_L3": 20}, "PTS")
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestPredictEmptyRow(t *testing.T) {
	p := newTestPredictor(t)
	_, err := p.Predict(nil, "PTS")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTrainAndPredict(t *testing.T) {
	for _, kind := range []string{KindRandomForest, KindGradientBoosting} {
		t.Run(kind, func(t *testing.T) {
			p := newTestPredictor(t)
			x, y := syntheticData(60)

			metrics, err := p.Train(x, y, testFeatures, "PTS", kind)
			require.NoError(t, err)
			assert.Equal(t, kind, metrics.ModelKind)
			assert.Greater(t, metrics.RMSE, 0.0)
			assert.GreaterOrEqual(t, metrics.RMSE, metrics.MAE)
			assert.NotEmpty(t, metrics.FeatureImportance)

			pred, err := p.Predict(map[string]float64{
				"PTS_L3": 20, "HOME_GAME": 1, "DAY_OF_WEEK": 2,
			}, "PTS")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, pred, 0.0)
		})
	}
}

func TestPredictionNeverNegative(t *testing.T) {
	p := newTestPredictor(t)

	// All-negative labels force the raw estimator output below zero.
	x := make([][]float64, 30)
	y := make([]float64, 30)
	for i := range x {
		x[i] = []float64{float64(i), 0, 0}
		y[i] = -5
	}

	_, err := p.Train(x, y, testFeatures, "PM", KindRandomForest)
	require.NoError(t, err)

	pred, err := p.Predict(map[string]float64{"PTS_L3": 15, "HOME_GAME": 0, "DAY_OF_WEEK": 0}, "PM")
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred)
}

func TestUnknownKindFallsBackToForest(t *testing.T) {
	p := newTestPredictor(t)
	x, y := syntheticData(40)

	metrics, err := p.Train(x, y, testFeatures, "PTS", "linear")
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, metrics.ModelKind)
}

func TestModelFileNaming(t *testing.T) {
	p := newTestPredictor(t)
	p.now = func() time.Time {
		return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	}

	x, y := syntheticData(40)
	metrics, err := p.Train(x, y, testFeatures, "AST", KindGradientBoosting)
	require.NoError(t, err)

	assert.Equal(t, "AST_gradient_boosting_20240305.gob", filepath.Base(metrics.ModelFile))
	_, err = os.Stat(metrics.ModelFile)
	assert.NoError(t, err)
}

func TestPredictLoadsLatestPersistedModel(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPredictor(dir)
	require.NoError(t, err)

	x, y := syntheticData(40)

	// Two training runs on different days; the later file must win.
	p.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	_, err = p.Train(x, y, testFeatures, "PTS", KindRandomForest)
	require.NoError(t, err)

	p.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	later, err := p.Train(x, y, testFeatures, "PTS", KindRandomForest)
	require.NoError(t, err)

	// A fresh predictor has an empty cache and must resolve from disk.
	fresh, err := NewPredictor(dir)
	require.NoError(t, err)

	want, err := p.Predict(map[string]float64{"PTS_L3": 18, "HOME_GAME": 1, "DAY_OF_WEEK": 3}, "PTS")
	require.NoError(t, err)
	got, err := fresh.Predict(map[string]float64{"PTS_L3": 18, "HOME_GAME": 1, "DAY_OF_WEEK": 3}, "PTS")
	require.NoError(t, err)

	assert.InDelta(t, want, got, 1e-9)
	assert.Equal(t, "PTS_random_forest_20240309.gob", filepath.Base(later.ModelFile))
}

func TestEvaluatePrediction(t *testing.T) {
	p := newTestPredictor(t)

	pred := 25.0
	eval := p.EvaluatePrediction(&pred, 28, "PTS")
	require.NotNil(t, eval)
	assert.Equal(t, 25.0, eval.Prediction)
	assert.Equal(t, 28.0, eval.Actual)
	assert.InDelta(t, 3.0, eval.Error, 1e-9)
	assert.InDelta(t, 3.0, eval.AbsError, 1e-9)
	assert.InDelta(t, 3.0/28.0*100, eval.PctError, 1e-9)
}

func TestEvaluatePredictionZeroActual(t *testing.T) {
	p := newTestPredictor(t)

	pred := 2.0
	eval := p.EvaluatePrediction(&pred, 0, "BLK")
	require.NotNil(t, eval)
	// Denominator is clamped to 1 so a zero actual cannot divide by zero.
	assert.InDelta(t, 200.0, eval.PctError, 1e-9)
}

func TestEvaluatePredictionNil(t *testing.T) {
	p := newTestPredictor(t)
	assert.Nil(t, p.EvaluatePrediction(nil, 10, "PTS"))
}

func TestCrossValidateSmallSets(t *testing.T) {
	// One sample cannot be folded; the CV score degrades to zero rather than
	// erroring out.
	assert.Zero(t, crossValidateMAE(KindRandomForest, [][]float64{{1}}, []float64{5}))
}
