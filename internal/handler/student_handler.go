package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// StudentHandler exposes student endpoints, including the per-student grade and average views.
type StudentHandler struct {
	students *service.StudentService
	grades   *service.GradeService
	averages *service.AverageService
	periods  activePeriodSource
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, grades *service.GradeService, averages *service.AverageService, periods activePeriodSource) *StudentHandler {
	return &StudentHandler{students: students, grades: grades, averages: averages, periods: periods}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or national id"
// @Param gradeLevel query string false "Filter by grade level"
// @Param section query string false "Filter by section"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		GradeLevel: c.Query("gradeLevel"),
		Section:    c.Query("section"),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Enroll student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Delete godoc
// @Summary Deactivate student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Grades godoc
// @Summary List a student's grades
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param periodId query string false "Limit to one grading period"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *StudentHandler) Grades(c *gin.Context) {
	entries, err := h.grades.GradesForStudent(c.Request.Context(), c.Param("id"), c.Query("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"count": len(entries)})
}

// Averages godoc
// @Summary Subject averages and general average for a period
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param periodId query string false "Grading period, defaults to the active one"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/averages [get]
func (h *StudentHandler) Averages(c *gin.Context) {
	ctx := c.Request.Context()
	student, err := h.students.Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	periodID, err := periodFromQuery(c, h.periods)
	if err != nil {
		response.Error(c, err)
		return
	}
	card, err := h.averages.SubjectAverages(ctx, student.ID, periodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil)
}
