package ml

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/pkg/logger"
)

// Supported estimator kinds. An unrecognized kind falls back to the forest.
const (
	KindRandomForest     = "random_forest"
	KindGradientBoosting = "gradient_boosting"
)

const (
	numTrees   = 100
	randomSeed = 42
	testShare  = 0.2
	cvFolds    = 5
)

// Evaluation compares a prediction against the observed value.
type Evaluation struct {
	Stat       string  `json:"stat"`
	Prediction float64 `json:"prediction"`
	Actual     float64 `json:"actual"`
	Error      float64 `json:"error"`
	AbsError   float64 `json:"abs_error"`
	PctError   float64 `json:"pct_error"`
}

// modelFile is the on-disk shape of a fitted model. Exactly one of Forest and
// Booster is set, matching Kind.
type modelFile struct {
	Stat     string
	Kind     string
	Features []string
	Forest   *Forest
	Booster  *Booster
}

func (m *modelFile) predictVector(v []float64) float64 {
	if m.Booster != nil {
		return m.Booster.Predict(v)
	}
	return m.Forest.Predict(v)
}

func (m *modelFile) importances() []float64 {
	if m.Booster != nil {
		return m.Booster.FeatureImportances()
	}
	return m.Forest.FeatureImportances()
}

// vector assembles a feature vector from a row in the model's own column
// order. Columns the row does not carry contribute 0, mirroring the dense
// finalization of the feature table.
func (m *modelFile) vector(row map[string]float64) []float64 {
	v := make([]float64, len(m.Features))
	for i, name := range m.Features {
		v[i] = row[name]
	}
	return v
}

// Predictor fits, persists, reloads, and applies one regression model per
// target stat. The in-process model map is a cache with no eviction: entries
// are only ever replaced by retraining. It is guarded by a RWMutex because
// the HTTP server calls Predict concurrently.
type Predictor struct {
	modelDir string
	logger   *logrus.Logger
	now      func() time.Time

	mu     sync.RWMutex
	models map[string]*modelFile
}

func NewPredictor(modelDir string) (*Predictor, error) {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &Predictor{
		modelDir: modelDir,
		logger:   logger.GetLogger(),
		now:      time.Now,
		models:   make(map[string]*modelFile),
	}, nil
}

// Train fits an estimator of the requested kind for one target stat: 80/20
// deterministic split, held-out MAE/RMSE/R², 5-fold cross-validated MAE on
// the full set, persistence to a date-stamped file, and replacement of any
// previously cached model for the stat. Returns ErrEmptyInput when there is
// nothing to fit.
func (p *Predictor) Train(x [][]float64, y []float64, featureNames []string, stat, kind string) (*Metrics, error) {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return nil, ErrEmptyInput
	}
	if kind != KindRandomForest && kind != KindGradientBoosting {
		kind = KindRandomForest
	}

	p.logger.WithFields(logrus.Fields{
		"stat":       stat,
		"model_kind": kind,
		"samples":    len(y),
		"features":   len(featureNames),
	}).Info("Training model")

	trainIdx, testIdx := splitIndices(len(y), testShare, randomSeed)
	model := fit(kind, gather(x, trainIdx), gatherY(y, trainIdx))
	model.Stat = stat
	model.Features = append([]string(nil), featureNames...)

	// Held-out evaluation.
	testActual := gatherY(y, testIdx)
	testPredicted := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		testPredicted[i] = model.predictVector(x[idx])
	}

	metrics := &Metrics{
		ModelKind:         kind,
		MAE:               meanAbsoluteError(testActual, testPredicted),
		RMSE:              rootMeanSquaredError(testActual, testPredicted),
		R2:                rSquared(testActual, testPredicted),
		CVMAE:             crossValidateMAE(kind, x, y),
		FeatureImportance: importanceMap(featureNames, model.importances()),
	}

	path, err := p.persist(model)
	if err != nil {
		p.logger.WithError(err).WithField("stat", stat).Error("Failed to persist model")
		return nil, err
	}
	metrics.ModelFile = path

	p.mu.Lock()
	p.models[stat] = model
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"stat":   stat,
		"mae":    metrics.MAE,
		"rmse":   metrics.RMSE,
		"r2":     metrics.R2,
		"cv_mae": metrics.CVMAE,
		"file":   path,
	}).Info("Model trained")

	return metrics, nil
}

// Predict applies the model for a stat to one finalized feature row and
// returns the non-negative prediction. The in-process map is consulted first;
// otherwise the lexicographically last persisted file with the stat prefix is
// loaded and cached. Returns ErrEmptyInput for an empty row and ErrNoModel
// when the stat was never trained.
func (p *Predictor) Predict(row map[string]float64, stat string) (float64, error) {
	if len(row) == 0 {
		return 0, ErrEmptyInput
	}

	model, err := p.resolve(stat)
	if err != nil {
		return 0, err
	}

	prediction := model.predictVector(model.vector(row))
	// Counting stats cannot go negative.
	return math.Max(0, prediction), nil
}

// EvaluatePrediction measures a prediction against the observed value.
// Returns nil when there was no prediction to evaluate. Percent error keeps
// the original max(1, actual) denominator guard, distortion for sub-1 actuals
// included.
func (p *Predictor) EvaluatePrediction(prediction *float64, actual float64, stat string) *Evaluation {
	if prediction == nil {
		return nil
	}
	err := actual - *prediction
	absErr := math.Abs(err)
	return &Evaluation{
		Stat:       stat,
		Prediction: *prediction,
		Actual:     actual,
		Error:      err,
		AbsError:   absErr,
		PctError:   absErr / math.Max(1, actual) * 100,
	}
}

func (p *Predictor) resolve(stat string) (*modelFile, error) {
	p.mu.RLock()
	model, ok := p.models[stat]
	p.mu.RUnlock()
	if ok {
		return model, nil
	}

	entries, err := os.ReadDir(p.modelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), stat+"_") && strings.HasSuffix(e.Name(), ".gob") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoModel
	}

	// Zero-padded dates make lexicographic order chronological.
	sort.Strings(names)
	latest := names[len(names)-1]

	model, err = p.load(filepath.Join(p.modelDir, latest))
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"stat": stat,
		"file": latest,
	}).Info("Loaded persisted model")

	p.mu.Lock()
	p.models[stat] = model
	p.mu.Unlock()
	return model, nil
}

func (p *Predictor) persist(model *modelFile) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.gob", model.Stat, model.Kind, p.now().Format("20060102"))
	path := filepath.Join(p.modelDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(model); err != nil {
		return "", fmt.Errorf("failed to encode model: %w", err)
	}
	return path, nil
}

func (p *Predictor) load(path string) (*modelFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var model modelFile
	if err := gob.NewDecoder(f).Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}
	return &model, nil
}

func fit(kind string, x [][]float64, y []float64) *modelFile {
	model := &modelFile{Kind: kind}
	if kind == KindGradientBoosting {
		model.Booster = fitBooster(x, y, numTrees, randomSeed)
	} else {
		model.Forest = fitForest(x, y, numTrees, randomSeed)
	}
	return model
}

// crossValidateMAE runs k-fold cross validation over the full dataset with a
// fresh estimator per fold and returns the mean fold MAE. Datasets too small
// to fold score 0.
func crossValidateMAE(kind string, x [][]float64, y []float64) float64 {
	n := len(y)
	folds := cvFolds
	if n < folds {
		folds = n
	}
	if folds < 2 {
		return 0
	}

	rng := rand.New(rand.NewSource(randomSeed))
	perm := rng.Perm(n)

	total := 0.0
	for f := 0; f < folds; f++ {
		var trainIdx, testIdx []int
		for i, idx := range perm {
			if i%folds == f {
				testIdx = append(testIdx, idx)
			} else {
				trainIdx = append(trainIdx, idx)
			}
		}
		model := fit(kind, gather(x, trainIdx), gatherY(y, trainIdx))

		actual := gatherY(y, testIdx)
		predicted := make([]float64, len(testIdx))
		for i, idx := range testIdx {
			predicted[i] = model.predictVector(x[idx])
		}
		total += meanAbsoluteError(actual, predicted)
	}
	return total / float64(folds)
}

// splitIndices deterministically shuffles 0..n-1 and carves off the trailing
// share as the test partition. Degenerate inputs keep at least one training
// row.
func splitIndices(n int, share float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	testN := int(math.Ceil(float64(n) * share))
	if testN >= n {
		testN = n - 1
	}
	split := n - testN
	return perm[:split], perm[split:]
}

func gather(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func gatherY(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

func importanceMap(names []string, values []float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	for i, name := range names {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}
