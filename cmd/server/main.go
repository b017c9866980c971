package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/api"
	"github.com/courtside-dev/courtside/internal/api/middleware"
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

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger("", cfg.IsDevelopment())
	log := logger.GetLogger()
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.GameRecord{}, &models.TrainingRun{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional: without it the API still works, just uncached.
	var cacheService *services.CacheService
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warnf("Redis unavailable, running without cache: %v", err)
		} else {
			cacheService = services.NewCacheService(redisClient)
			defer redisClient.Close()
		}
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

	hub := services.NewEventHub()
	go hub.Run()

	predictions := services.NewPredictionService(db, collectorSvc, processor, predictor, linesClient, cacheService, hub, log)

	if cfg.EnableBackgroundJobs {
		fetchInterval, err := time.ParseDuration(cfg.DataFetchInterval)
		if err != nil {
			log.Warnf("Invalid fetch interval, using default 2h: %v", err)
			fetchInterval = 2 * time.Hour
		}
		refresher := services.NewRefresherService(collectorSvc, linesClient, cacheService, hub, log, season, cfg.SeasonType, fetchInterval)
		if err := refresher.Start(); err != nil {
			log.Errorf("Failed to start refresher: %v", err)
		}
		defer refresher.Stop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, collectorSvc, processor, predictions, linesClient, cacheService, hub, cfg)

	router.GET("/ws", api.WebSocketHandler(hub, log))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
