package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/utils"
)

type CollectionHandler struct {
	collector  *collector.Service
	hub        *services.EventHub
	season     string
	seasonType string
}

func NewCollectionHandler(collectorSvc *collector.Service, hub *services.EventHub, season, seasonType string) *CollectionHandler {
	return &CollectionHandler{
		collector:  collectorSvc,
		hub:        hub,
		season:     season,
		seasonType: seasonType,
	}
}

type collectRequest struct {
	PlayerID string `json:"player_id"`
}

// Collect triggers a collection run. With a player_id it fetches one
// player's log; without, the full roster.
func (h *CollectionHandler) Collect(c *gin.Context) {
	var req collectRequest
	_ = c.ShouldBindJSON(&req)

	roster := collector.DefaultRoster
	if req.PlayerID != "" {
		player, ok := collector.FindRosterPlayer(req.PlayerID)
		if !ok {
			utils.SendNotFound(c, "Player not in tracked roster")
			return
		}
		roster = []collector.RosterPlayer{player}
	}

	summary, err := h.collector.CollectRoster(c.Request.Context(), roster, h.season, h.seasonType)
	if err != nil {
		utils.SendInternalError(c, "Collection run failed")
		return
	}

	if h.hub != nil {
		_ = h.hub.Broadcast(services.TopicCollection, "collection_completed", summary)
	}

	utils.SendSuccess(c, summary)
}
