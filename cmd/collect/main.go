package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/ml"
	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/internal/providers"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/config"
	"github.com/courtside-dev/courtside/pkg/database"
	"github.com/courtside-dev/courtside/pkg/logger"
)

// One-shot pipeline runner: collect game logs, optionally train models and
// print a prediction, without the API server.
func main() {
	playerFlag := flag.String("player", "", "collect a single player by name or ID (default: full roster)")
	trainFlag := flag.Bool("train", false, "train models for every tracked stat after collecting")
	statFlag := flag.String("stat", "", "print a prediction for this stat (requires -player)")
	kindFlag := flag.String("kind", "", "model kind: random_forest or gradient_boosting")
	skipCollect := flag.Bool("skip-collect", false, "skip collection and use stored data")
	backfillDays := flag.Int("backfill-days", 0, "backfill the last N days with one league-wide query instead of per-player logs")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger("", cfg.IsDevelopment())
	log := logger.GetLogger()

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.GameRecord{}, &models.TrainingRun{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	season := cfg.Season
	if season == "" {
		season = collector.CurrentSeason(time.Now())
	}

	statsClient := providers.NewNBAStatsClient(cfg.StatsAPITimeout, cfg.StatsRequestGap, cfg.CircuitThreshold, log)
	linesClient := providers.NewLinesClient(cfg.LinesURL, cfg.DataDir, cfg.UseSampleLines, log)
	collectorSvc := collector.NewService(statsClient, db, cfg.DataDir)

	processor := features.NewProcessor()
	predictor, err := ml.NewPredictor(cfg.ModelDir)
	if err != nil {
		log.Fatalf("Failed to initialize predictor: %v", err)
	}
	predictions := services.NewPredictionService(db, collectorSvc, processor, predictor, linesClient, nil, nil, log)

	ctx := context.Background()

	roster := collector.DefaultRoster
	if *playerFlag != "" {
		player, ok := collector.FindRosterPlayer(*playerFlag)
		if !ok {
			log.Fatalf("Player %q not in tracked roster", *playerFlag)
		}
		roster = []collector.RosterPlayer{player}
	}

	switch {
	case *skipCollect:
	case *backfillDays > 0:
		to := time.Now()
		from := to.AddDate(0, 0, -*backfillDays)
		rows, err := collectorSvc.BackfillRange(ctx, roster, from, to)
		if err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
		log.WithField("rows", rows).Info("Backfill complete")
	default:
		summary, err := collectorSvc.CollectRoster(ctx, roster, season, cfg.SeasonType)
		if err != nil {
			log.Fatalf("Collection failed: %v", err)
		}
		log.WithFields(logrus.Fields{
			"fetched": summary.PlayersFetched,
			"failed":  summary.PlayersFailed,
			"rows":    summary.RowsUpserted,
		}).Info("Collection complete")
	}

	kind := *kindFlag
	if kind == "" {
		kind = cfg.DefaultModelKind
	}

	if *trainFlag {
		trained, failures := predictions.TrainAll(ctx, kind)
		for stat, metrics := range trained {
			log.WithFields(logrus.Fields{
				"stat": stat,
				"mae":  metrics.MAE,
				"r2":   metrics.R2,
			}).Info("Model trained")
		}
		for stat, reason := range failures {
			log.WithFields(logrus.Fields{
				"stat":   stat,
				"reason": reason,
			}).Warn("Training skipped")
		}
	}

	if *statFlag != "" {
		if *playerFlag == "" {
			log.Fatal("-stat requires -player")
		}
		result, err := predictions.Predict(ctx, roster[0].ID, *statFlag)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		fmt.Printf("%s next-game %s: %.1f\n", result.PlayerName, result.Stat, result.Prediction)
	}
}
