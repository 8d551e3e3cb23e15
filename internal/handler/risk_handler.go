package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// RiskHandler exposes at-risk reporting and classification.
type RiskHandler struct {
	risk    *service.RiskService
	periods activePeriodSource
}

// NewRiskHandler constructs RiskHandler.
func NewRiskHandler(risk *service.RiskService, periods activePeriodSource) *RiskHandler {
	return &RiskHandler{risk: risk, periods: periods}
}

// AtRisk godoc
// @Summary Students below the at-risk threshold
// @Tags Risk
// @Produce json
// @Param periodId query string false "Grading period, defaults to the active one"
// @Param threshold query number false "Threshold, defaults to the configured value"
// @Success 200 {object} response.Envelope
// @Router /risk/at-risk [get]
func (h *RiskHandler) AtRisk(c *gin.Context) {
	periodID, threshold, err := h.scope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.risk.FindAtRisk(c.Request.Context(), periodID, threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil, map[string]interface{}{
		"period_id": periodID,
		"threshold": threshold,
		"count":     len(students),
	})
}

// Distribution godoc
// @Summary Students per performance category
// @Tags Risk
// @Produce json
// @Param periodId query string false "Grading period, defaults to the active one"
// @Success 200 {object} response.Envelope
// @Router /risk/distribution [get]
func (h *RiskHandler) Distribution(c *gin.Context) {
	periodID, err := periodFromQuery(c, h.periods)
	if err != nil {
		response.Error(c, err)
		return
	}
	dist, err := h.risk.Distribution(c.Request.Context(), periodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// Export godoc
// @Summary Download the at-risk list
// @Tags Risk
// @Produce text/csv
// @Produce application/pdf
// @Param periodId query string false "Grading period, defaults to the active one"
// @Param threshold query number false "Threshold"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /risk/at-risk/export [get]
func (h *RiskHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	periodID, threshold, err := h.scope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.risk.ExportAtRisk(c.Request.Context(), periodID, threshold, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Data)
}

// Classify godoc
// @Summary Performance category for an average
// @Tags Risk
// @Produce json
// @Param average query number true "Average to classify"
// @Success 200 {object} response.Envelope
// @Router /classify [get]
func (h *RiskHandler) Classify(c *gin.Context) {
	if c.Query("average") == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "average is required"))
		return
	}
	average, err := floatQuery(c, "average")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"average": average, "category": service.Classify(average)}, nil)
}

func (h *RiskHandler) scope(c *gin.Context) (string, float64, error) {
	threshold, err := floatQuery(c, "threshold")
	if err != nil {
		return "", 0, err
	}
	periodID, err := periodFromQuery(c, h.periods)
	if err != nil {
		return "", 0, err
	}
	return periodID, threshold, nil
}
