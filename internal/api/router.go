package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/courtside-dev/courtside/internal/api/handlers"
	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/providers"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/config"
	"github.com/courtside-dev/courtside/pkg/database"
)

// SetupRoutes wires every API endpoint onto the group.
func SetupRoutes(
	group *gin.RouterGroup,
	db *database.DB,
	collectorSvc *collector.Service,
	processor *features.Processor,
	predictions *services.PredictionService,
	lines *providers.LinesClient,
	cache *services.CacheService,
	hub *services.EventHub,
	cfg *config.Config,
) {
	healthHandler := handlers.NewHealthHandler(db)
	playerHandler := handlers.NewPlayerHandler(collectorSvc, processor, cache)
	predictionHandler := handlers.NewPredictionHandler(predictions)
	linesHandler := handlers.NewLinesHandler(lines, predictions)
	collectionHandler := handlers.NewCollectionHandler(collectorSvc, hub, cfg.Season, cfg.SeasonType)

	group.GET("/health", healthHandler.GetHealth)
	group.GET("/ready", healthHandler.GetReady)

	group.GET("/players", playerHandler.ListPlayers)
	group.GET("/players/:id/games", playerHandler.GetGameLog)
	group.GET("/players/:id/features", playerHandler.GetFeatures)
	group.GET("/players/:id/prediction", predictionHandler.Predict)
	group.GET("/players/:id/evaluate", predictionHandler.Evaluate)

	group.POST("/collect", collectionHandler.Collect)

	group.POST("/train", predictionHandler.Train)
	group.POST("/train/all", predictionHandler.TrainAll)
	group.GET("/training-runs", predictionHandler.History)

	group.GET("/lines", linesHandler.GetLines)
	group.GET("/lines/compare", linesHandler.Compare)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades a connection and attaches it to the event hub.
func WebSocketHandler(hub *services.EventHub, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithError(err).Warn("WebSocket upgrade failed")
			return
		}

		client := services.NewEventClient(hub, conn)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
