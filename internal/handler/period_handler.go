package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// PeriodHandler exposes grading period and evaluation type endpoints.
type PeriodHandler struct {
	periods *service.PeriodService
}

// NewPeriodHandler constructs PeriodHandler.
func NewPeriodHandler(periods *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

type periodPayload struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    bool   `json:"active"`
}

// List godoc
// @Summary List grading periods
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.periods.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Active godoc
// @Summary Current grading period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods/active [get]
func (h *PeriodHandler) Active(c *gin.Context) {
	period, err := h.periods.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Get godoc
// @Summary Get grading period
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	period, err := h.periods.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Create godoc
// @Summary Create grading period
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body periodPayload true "Dates as YYYY-MM-DD"
// @Success 201 {object} response.Envelope
// @Router /periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var payload periodPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	start, err := parseDate("start_date", payload.StartDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate("end_date", payload.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	period, err := h.periods.Create(c.Request.Context(), service.CreatePeriodRequest{
		Name:      payload.Name,
		StartDate: start,
		EndDate:   end,
		Active:    payload.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// EvaluationTypes godoc
// @Summary List evaluation types
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /evaluation-types [get]
func (h *PeriodHandler) EvaluationTypes(c *gin.Context) {
	types, err := h.periods.EvaluationTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// CreateEvaluationType godoc
// @Summary Create evaluation type
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.CreateEvaluationTypeRequest true "Evaluation type"
// @Success 201 {object} response.Envelope
// @Router /evaluation-types [post]
func (h *PeriodHandler) CreateEvaluationType(c *gin.Context) {
	var req service.CreateEvaluationTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	evalType, err := h.periods.CreateEvaluationType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evalType)
}
