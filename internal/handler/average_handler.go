package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// AverageHandler exposes maintenance endpoints for the subject average table.
type AverageHandler struct {
	averages *service.AverageService
}

// NewAverageHandler constructs AverageHandler.
func NewAverageHandler(averages *service.AverageService) *AverageHandler {
	return &AverageHandler{averages: averages}
}

// Recompute godoc
// @Summary Recompute one subject average
// @Tags Averages
// @Accept json
// @Produce json
// @Param payload body models.AverageKey true "Student, subject and period"
// @Success 200 {object} response.Envelope
// @Router /averages/recompute [post]
func (h *AverageHandler) Recompute(c *gin.Context) {
	var key models.AverageKey
	if err := c.ShouldBindJSON(&key); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	avg, err := h.averages.Recompute(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, avg, nil)
}

// Rebuild godoc
// @Summary Rebuild every subject average from the grade table
// @Tags Averages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /averages/rebuild [post]
func (h *AverageHandler) Rebuild(c *gin.Context) {
	rows, err := h.averages.RecomputeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rows": rows}, nil)
}
