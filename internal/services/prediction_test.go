package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/ml"
	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/internal/providers"
	"github.com/courtside-dev/courtside/pkg/database"
	"github.com/courtside-dev/courtside/pkg/logger"
)

type stubProvider struct{}

func (stubProvider) PlayerGameLog(context.Context, string, string, string) ([]models.GameRecord, error) {
	return nil, nil
}

func seedGameLog(t *testing.T, db *database.DB, playerID, playerName string, games int) {
	t.Helper()
	records := make([]models.GameRecord, games)
	for i := range records {
		matchup := "LAL vs. BOS"
		if i%2 == 0 {
			matchup = "LAL @ BOS"
		}
		records[i] = models.GameRecord{
			PlayerID:   playerID,
			PlayerName: playerName,
			GameDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*2),
			Matchup:    matchup,
			Minutes:    30 + float64(i%8),
			Points:     20 + float64(i%10),
			Rebounds:   6 + float64(i%4),
			Assists:    7 + float64(i%5),
			FGM:        8, FGA: 16, FG3M: 2, FG3A: 6, FTM: 4, FTA: 5,
		}
	}
	require.NoError(t, db.Create(&records).Error)
}

func newTestPredictionService(t *testing.T) (*PredictionService, *database.DB) {
	t.Helper()
	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameRecord{}, &models.TrainingRun{}))
	t.Cleanup(func() { db.Close() })

	log := logger.GetLogger()
	collectorSvc := collector.NewService(stubProvider{}, db, t.TempDir())
	predictor, err := ml.NewPredictor(t.TempDir())
	require.NoError(t, err)
	lines := providers.NewLinesClient("", t.TempDir(), true, log)

	svc := NewPredictionService(db, collectorSvc, features.NewProcessor(), predictor, lines, nil, nil, log)
	return svc, db
}

func TestTrainRecordsRun(t *testing.T) {
	svc, db := newTestPredictionService(t)
	seedGameLog(t, db, "2544", "LeBron James", 40)

	metrics, err := svc.Train(context.Background(), "", "PTS", ml.KindRandomForest)
	require.NoError(t, err)
	assert.Equal(t, ml.KindRandomForest, metrics.ModelKind)
	assert.NotEmpty(t, metrics.ModelFile)

	runs, err := svc.TrainingHistory("PTS", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "PTS", runs[0].Stat)
	assert.Equal(t, 40, runs[0].Samples)
}

func TestTrainWithoutData(t *testing.T) {
	svc, _ := newTestPredictionService(t)
	_, err := svc.Train(context.Background(), "", "PTS", ml.KindRandomForest)
	assert.ErrorIs(t, err, features.ErrEmptyInput)
}

func TestPredictAfterTraining(t *testing.T) {
	svc, db := newTestPredictionService(t)
	seedGameLog(t, db, "2544", "LeBron James", 40)

	_, err := svc.Train(context.Background(), "", "PTS", ml.KindGradientBoosting)
	require.NoError(t, err)

	result, err := svc.Predict(context.Background(), "2544", "PTS")
	require.NoError(t, err)
	assert.Equal(t, "2544", result.PlayerID)
	assert.Equal(t, "LeBron James", result.PlayerName)
	assert.GreaterOrEqual(t, result.Prediction, 0.0)
}

func TestPredictWithoutModel(t *testing.T) {
	svc, db := newTestPredictionService(t)
	seedGameLog(t, db, "2544", "LeBron James", 20)

	_, err := svc.Predict(context.Background(), "2544", "PTS")
	assert.ErrorIs(t, err, ml.ErrNoModel)
}

func TestEvaluateAgainstActual(t *testing.T) {
	svc, db := newTestPredictionService(t)
	seedGameLog(t, db, "2544", "LeBron James", 40)

	_, err := svc.Train(context.Background(), "", "PTS", ml.KindRandomForest)
	require.NoError(t, err)

	eval, err := svc.Evaluate(context.Background(), "2544", "PTS", 28)
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, 28.0, eval.Actual)
	assert.InDelta(t, eval.AbsError/28*100, eval.PctError, 1e-9)
}

func TestCompareLinesCoversTrainedPlayers(t *testing.T) {
	svc, db := newTestPredictionService(t)
	// Sample slate includes LeBron James points and assists lines.
	seedGameLog(t, db, "2544", "LeBron James", 40)

	ctx := context.Background()
	for _, stat := range []string{"PTS", "REB", "AST"} {
		_, err := svc.Train(ctx, "", stat, ml.KindRandomForest)
		require.NoError(t, err)
	}

	comparisons, err := svc.CompareLines(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, comparisons)

	for _, cmp := range comparisons {
		assert.Equal(t, "LeBron James", cmp.Projection.PlayerName)
		assert.InDelta(t, cmp.Prediction-cmp.Projection.Line, cmp.Diff, 1e-9)
		if cmp.Diff < 0 {
			assert.Equal(t, "under", cmp.Lean)
		} else {
			assert.Equal(t, "over", cmp.Lean)
		}
	}
}

func TestTrainAllReportsFailures(t *testing.T) {
	svc, db := newTestPredictionService(t)
	seedGameLog(t, db, "2544", "LeBron James", 40)

	trained, failures := svc.TrainAll(context.Background(), ml.KindRandomForest)
	assert.NotEmpty(t, trained)
	assert.Contains(t, trained, "PTS")
	assert.Empty(t, failures)
}
