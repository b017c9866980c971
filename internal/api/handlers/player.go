package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/models"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/utils"
)

type PlayerHandler struct {
	collector *collector.Service
	processor *features.Processor
	cache     *services.CacheService
}

func NewPlayerHandler(collectorSvc *collector.Service, processor *features.Processor, cache *services.CacheService) *PlayerHandler {
	return &PlayerHandler{
		collector: collectorSvc,
		processor: processor,
		cache:     cache,
	}
}

// ListPlayers returns the tracked roster.
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	utils.SendSuccess(c, collector.DefaultRoster)
}

// GetGameLog returns a player's stored game log, most recent first.
func (h *PlayerHandler) GetGameLog(c *gin.Context) {
	player, ok := collector.FindRosterPlayer(c.Param("id"))
	if !ok {
		utils.SendNotFound(c, "Player not in tracked roster")
		return
	}

	ctx := context.Background()
	cacheKey := services.GameLogCacheKey(player.ID)
	if h.cache != nil {
		var cached []models.GameRecord
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			utils.SendSuccess(c, cached)
			return
		}
	}

	records, err := h.collector.LoadPlayerLog(player.ID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load game log")
		return
	}
	if len(records) == 0 {
		utils.SendNoData(c, "No game data collected for player")
		return
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, cacheKey, records, 30*time.Minute)
	}

	utils.SendSuccess(c, records)
}

// GetFeatures returns a player's engineered feature table, the rows the
// models train on, most recent game first.
func (h *PlayerHandler) GetFeatures(c *gin.Context) {
	player, ok := collector.FindRosterPlayer(c.Param("id"))
	if !ok {
		utils.SendNotFound(c, "Player not in tracked roster")
		return
	}

	records, err := h.collector.LoadPlayerLog(player.ID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load game log")
		return
	}

	table, err := h.processor.Process(records)
	if err != nil {
		utils.SendNoData(c, "No game data collected for player")
		return
	}

	utils.SendSuccess(c, table.Rows)
}
