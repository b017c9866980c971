package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/providers"
)

// RefresherService runs the scheduled background jobs: pulling fresh game
// logs for the roster and refreshing the projection line slate. Each run is
// announced on the event hub so dashboards pick it up without polling.
type RefresherService struct {
	collector     *collector.Service
	lines         *providers.LinesClient
	cache         *CacheService
	hub           *EventHub
	logger        *logrus.Logger
	cron          *cron.Cron
	season        string
	seasonType    string
	fetchInterval time.Duration
	mu            sync.Mutex
	isRunning     bool
}

func NewRefresherService(
	collectorSvc *collector.Service,
	lines *providers.LinesClient,
	cache *CacheService,
	hub *EventHub,
	logger *logrus.Logger,
	season, seasonType string,
	fetchInterval time.Duration,
) *RefresherService {
	return &RefresherService{
		collector:     collectorSvc,
		lines:         lines,
		cache:         cache,
		hub:           hub,
		logger:        logger,
		cron:          cron.New(),
		season:        season,
		seasonType:    seasonType,
		fetchInterval: fetchInterval,
	}
}

// Start schedules the background jobs and kicks off an initial collection.
func (s *RefresherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.fetchInterval.String())
	if _, err := s.cron.AddFunc(schedule, s.refreshGameLogs); err != nil {
		return fmt.Errorf("failed to schedule game log refresh: %w", err)
	}

	// Lines move throughout the day; refresh them more often than logs.
	if _, err := s.cron.AddFunc("@every 30m", s.refreshLines); err != nil {
		return fmt.Errorf("failed to schedule lines refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.refreshGameLogs()

	s.logger.Info("Refresher service started")
	return nil
}

// Stop halts the scheduled jobs and waits for in-flight runs.
func (s *RefresherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Refresher service stopped")
}

func (s *RefresherService) refreshGameLogs() {
	s.logger.Info("Starting scheduled game log refresh")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	summary, err := s.collector.CollectRoster(ctx, collector.DefaultRoster, s.season, s.seasonType)
	if err != nil {
		s.logger.Errorf("Scheduled collection failed: %v", err)
		return
	}

	if s.cache != nil {
		for _, player := range collector.DefaultRoster {
			if err := s.cache.InvalidatePlayer(ctx, player.ID); err != nil {
				s.logger.WithError(err).WithField("player_id", player.ID).Warn("Failed to invalidate player cache")
			}
		}
	}

	if s.hub != nil {
		if err := s.hub.Broadcast(TopicCollection, "collection_completed", summary); err != nil {
			s.logger.WithError(err).Warn("Failed to broadcast collection event")
		}
	}
}

func (s *RefresherService) refreshLines() {
	s.logger.Info("Starting scheduled lines refresh")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lines := s.lines.Load(ctx)
	if s.cache != nil {
		if err := s.cache.Set(ctx, LinesCacheKey(), lines, 30*time.Minute); err != nil {
			s.logger.WithError(err).Warn("Failed to cache lines")
		}
	}

	if s.hub != nil {
		payload := map[string]interface{}{"count": len(lines)}
		if err := s.hub.Broadcast(TopicLines, "lines_refreshed", payload); err != nil {
			s.logger.WithError(err).Warn("Failed to broadcast lines event")
		}
	}
}
