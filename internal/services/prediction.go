package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/ml"
	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/internal/providers"
	"github.com/courtside-dev/courtside/pkg/database"
)

// PredictionService is the orchestration layer over the pipeline: it loads
// stored game logs, engineers features, trains and queries models, and
// compares predictions against the projection line slate.
type PredictionService struct {
	db        *database.DB
	collector *collector.Service
	processor *features.Processor
	predictor *ml.Predictor
	lines     *providers.LinesClient
	cache     *CacheService
	hub       *EventHub
	logger    *logrus.Logger
}

func NewPredictionService(
	db *database.DB,
	collectorSvc *collector.Service,
	processor *features.Processor,
	predictor *ml.Predictor,
	lines *providers.LinesClient,
	cache *CacheService,
	hub *EventHub,
	logger *logrus.Logger,
) *PredictionService {
	return &PredictionService{
		db:        db,
		collector: collectorSvc,
		processor: processor,
		predictor: predictor,
		lines:     lines,
		cache:     cache,
		hub:       hub,
		logger:    logger,
	}
}

// Train fits a model for one stat from every stored game log and records the
// run. playerID narrows training to a single player's log when non-empty.
func (s *PredictionService) Train(ctx context.Context, playerID, stat, kind string) (*ml.Metrics, error) {
	records, err := s.loadRecords(playerID)
	if err != nil {
		return nil, err
	}

	table, err := s.processor.Process(records)
	if err != nil {
		return nil, err
	}

	x, y, names, err := s.processor.ExtractFeatures(table, stat)
	if err != nil {
		return nil, err
	}

	metrics, err := s.predictor.Train(x, y, names, stat, kind)
	if err != nil {
		return nil, err
	}

	if err := s.recordRun(stat, len(y), metrics); err != nil {
		s.logger.WithError(err).Warn("Failed to record training run")
	}

	if s.cache != nil {
		for _, player := range collector.DefaultRoster {
			if err := s.cache.Delete(ctx, PredictionCacheKey(player.ID, stat)); err != nil {
				s.logger.WithError(err).Debug("Failed to drop stale prediction cache")
			}
		}
	}

	if s.hub != nil {
		payload := map[string]interface{}{"stat": stat, "model_kind": metrics.ModelKind, "mae": metrics.MAE}
		if err := s.hub.Broadcast(TopicPredictions, "model_trained", payload); err != nil {
			s.logger.WithError(err).Warn("Failed to broadcast training event")
		}
	}

	return metrics, nil
}

// TrainAll fits one model per tracked stat. Per-stat failures are collected
// but do not stop the sweep.
func (s *PredictionService) TrainAll(ctx context.Context, kind string) (map[string]*ml.Metrics, map[string]string) {
	results := make(map[string]*ml.Metrics)
	failures := make(map[string]string)
	for _, stat := range models.TrackedStats {
		metrics, err := s.Train(ctx, "", stat, kind)
		if err != nil {
			failures[stat] = err.Error()
			continue
		}
		results[stat] = metrics
	}
	return results, failures
}

// PredictionResult is one stat prediction for a player.
type PredictionResult struct {
	PlayerID   string         `json:"player_id"`
	PlayerName string         `json:"player_name"`
	Stat       string         `json:"stat"`
	Prediction float64        `json:"prediction"`
	Evaluation *ml.Evaluation `json:"evaluation,omitempty"`
}

// Predict produces a next-game prediction for one player and stat from the
// player's current-form feature row.
func (s *PredictionService) Predict(ctx context.Context, playerID, stat string) (*PredictionResult, error) {
	if s.cache != nil {
		var cached PredictionResult
		if err := s.cache.Get(ctx, PredictionCacheKey(playerID, stat), &cached); err == nil {
			return &cached, nil
		}
	}

	records, err := s.collector.LoadPlayerLog(playerID)
	if err != nil {
		return nil, err
	}

	row, err := s.processor.PrepareInferenceRow(records, stat)
	if err != nil {
		return nil, err
	}

	value, err := s.predictor.Predict(row.Values, stat)
	if err != nil {
		return nil, err
	}

	result := &PredictionResult{
		PlayerID:   playerID,
		PlayerName: row.PlayerName,
		Stat:       stat,
		Prediction: value,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, PredictionCacheKey(playerID, stat), result, time.Hour); err != nil {
			s.logger.WithError(err).Debug("Failed to cache prediction")
		}
	}

	return result, nil
}

// Evaluate compares a model prediction against an observed actual.
func (s *PredictionService) Evaluate(ctx context.Context, playerID, stat string, actual float64) (*ml.Evaluation, error) {
	result, err := s.Predict(ctx, playerID, stat)
	if err != nil {
		return nil, err
	}
	return s.predictor.EvaluatePrediction(&result.Prediction, actual, stat), nil
}

// Comparison is one projection line set against the model's prediction.
type Comparison struct {
	Projection models.Projection `json:"projection"`
	Prediction float64           `json:"prediction"`
	Diff       float64           `json:"diff"`
	Lean       string            `json:"lean"`
}

// CompareLines runs every projection in the current slate against the model.
// Players without stored logs or stats without trained models are skipped;
// the comparison covers what it can.
func (s *PredictionService) CompareLines(ctx context.Context) ([]Comparison, error) {
	slate := s.lines.Load(ctx)
	comparisons := make([]Comparison, 0, len(slate))

	for _, proj := range slate {
		player, ok := collector.FindRosterPlayer(proj.PlayerName)
		if !ok {
			continue
		}

		prediction, ok := s.predictFor(ctx, player.ID, proj)
		if !ok {
			continue
		}

		diff := prediction - proj.Line
		lean := "over"
		if diff < 0 {
			lean = "under"
		}
		comparisons = append(comparisons, Comparison{
			Projection: proj,
			Prediction: prediction,
			Diff:       diff,
			Lean:       lean,
		})
	}

	return comparisons, nil
}

// predictFor resolves one projection to a model prediction. PRA composites
// sum the three component predictions and require all of them.
func (s *PredictionService) predictFor(ctx context.Context, playerID string, proj models.Projection) (float64, bool) {
	if proj.IsComposite() {
		total := 0.0
		for _, stat := range []string{"PTS", "REB", "AST"} {
			result, err := s.Predict(ctx, playerID, stat)
			if err != nil {
				return 0, false
			}
			total += result.Prediction
		}
		return total, true
	}

	stat, ok := proj.StatColumn()
	if !ok {
		return 0, false
	}
	result, err := s.Predict(ctx, playerID, stat)
	if err != nil {
		return 0, false
	}
	return result.Prediction, true
}

// TrainingHistory returns recorded training runs, newest first.
func (s *PredictionService) TrainingHistory(stat string, limit int) ([]models.TrainingRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("created_at DESC").Limit(limit)
	if stat != "" {
		query = query.Where("stat = ?", stat)
	}
	var runs []models.TrainingRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("loading training runs: %w", err)
	}
	return runs, nil
}

func (s *PredictionService) loadRecords(playerID string) ([]models.GameRecord, error) {
	if playerID != "" {
		return s.collector.LoadPlayerLog(playerID)
	}
	return s.collector.LoadAllLogs()
}

func (s *PredictionService) recordRun(stat string, samples int, metrics *ml.Metrics) error {
	importance, err := json.Marshal(metrics.FeatureImportance)
	if err != nil {
		return err
	}
	run := models.TrainingRun{
		Stat:       stat,
		ModelKind:  metrics.ModelKind,
		Samples:    samples,
		MAE:        metrics.MAE,
		RMSE:       metrics.RMSE,
		R2:         metrics.R2,
		CVMAE:      metrics.CVMAE,
		Importance: datatypes.JSON(importance),
		ModelFile:  metrics.ModelFile,
	}
	return s.db.Create(&run).Error
}
