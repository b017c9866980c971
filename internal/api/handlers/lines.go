package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/courtside/internal/providers"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/utils"
)

type LinesHandler struct {
	lines       *providers.LinesClient
	predictions *services.PredictionService
}

func NewLinesHandler(lines *providers.LinesClient, predictions *services.PredictionService) *LinesHandler {
	return &LinesHandler{
		lines:       lines,
		predictions: predictions,
	}
}

// GetLines returns the current projection line slate.
func (h *LinesHandler) GetLines(c *gin.Context) {
	slate := h.lines.Load(c.Request.Context())
	utils.SendSuccess(c, slate)
}

// Compare runs the current slate against the trained models and returns the
// lean on each line the pipeline can cover.
func (h *LinesHandler) Compare(c *gin.Context) {
	comparisons, err := h.predictions.CompareLines(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to compare lines")
		return
	}
	if len(comparisons) == 0 {
		utils.SendNoData(c, "No lines could be compared, collect data and train models first")
		return
	}
	utils.SendSuccess(c, comparisons)
}
