package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/courtside/internal/collector"
	"github.com/courtside-dev/courtside/internal/features"
	"github.com/courtside-dev/courtside/internal/ml"
	"github.com/courtside-dev/courtside/internal/services"
	"github.com/courtside-dev/courtside/pkg/utils"
)

type PredictionHandler struct {
	predictions *services.PredictionService
}

func NewPredictionHandler(predictions *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictions: predictions,
	}
}

type trainRequest struct {
	Stat      string `json:"stat" binding:"required"`
	ModelKind string `json:"model_kind"`
	PlayerID  string `json:"player_id"`
}

// Train fits a model for one stat from the stored game logs.
func (h *PredictionHandler) Train(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid training request", err.Error())
		return
	}

	metrics, err := h.predictions.Train(c.Request.Context(), req.PlayerID, req.Stat, req.ModelKind)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	utils.SendSuccess(c, metrics)
}

type trainAllRequest struct {
	ModelKind string `json:"model_kind"`
}

// TrainAll fits one model per tracked stat.
func (h *PredictionHandler) TrainAll(c *gin.Context) {
	// Body is optional; an empty POST trains the default model kind.
	var req trainAllRequest
	_ = c.ShouldBindJSON(&req)

	results, failures := h.predictions.TrainAll(c.Request.Context(), req.ModelKind)
	utils.SendSuccess(c, gin.H{
		"trained":  results,
		"failures": failures,
	})
}

// Predict returns the model's next-game prediction for a player and stat.
func (h *PredictionHandler) Predict(c *gin.Context) {
	player, ok := collector.FindRosterPlayer(c.Param("id"))
	if !ok {
		utils.SendNotFound(c, "Player not in tracked roster")
		return
	}

	stat := c.DefaultQuery("stat", "PTS")

	result, err := h.predictions.Predict(c.Request.Context(), player.ID, stat)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	utils.SendSuccess(c, result)
}

// Evaluate compares the model's prediction against an observed actual value.
func (h *PredictionHandler) Evaluate(c *gin.Context) {
	player, ok := collector.FindRosterPlayer(c.Param("id"))
	if !ok {
		utils.SendNotFound(c, "Player not in tracked roster")
		return
	}

	stat := c.DefaultQuery("stat", "PTS")
	actualStr := c.Query("actual")
	actual, err := strconv.ParseFloat(actualStr, 64)
	if err != nil {
		utils.SendValidationError(c, "Invalid actual value", actualStr)
		return
	}

	eval, err := h.predictions.Evaluate(c.Request.Context(), player.ID, stat, actual)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	utils.SendSuccess(c, eval)
}

// History lists recorded training runs, newest first.
func (h *PredictionHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.predictions.TrainingHistory(c.Query("stat"), limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to load training history")
		return
	}

	utils.SendSuccess(c, runs)
}

// sendPipelineError maps the pipeline's typed errors onto API responses.
func (h *PredictionHandler) sendPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, features.ErrEmptyInput), errors.Is(err, ml.ErrEmptyInput):
		utils.SendNoData(c, "Not enough game data collected")
	case errors.Is(err, features.ErrMissingColumn):
		utils.SendValidationError(c, "Unknown stat", err.Error())
	case errors.Is(err, ml.ErrNoModel):
		utils.SendError(c, http.StatusConflict, utils.NewAppError(utils.ErrCodeNoModel, "No trained model for stat, train one first"))
	default:
		utils.SendInternalError(c, err.Error())
	}
}
