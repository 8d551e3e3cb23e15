package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// GradeHandler exposes the grade write endpoint.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

type recordGradePayload struct {
	StudentID        string   `json:"student_id"`
	SubjectID        string   `json:"subject_id"`
	TeacherID        string   `json:"teacher_id"`
	PeriodID         string   `json:"period_id"`
	EvaluationTypeID string   `json:"evaluation_type_id"`
	Score            *float64 `json:"score"`
	EvaluatedOn      string   `json:"evaluated_on"`
	Notes            string   `json:"notes"`
}

// Record godoc
// @Summary Record a grade
// @Description Stores the score and refreshes the subject average. Teachers always record under their own id.
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body recordGradePayload true "Grade payload, evaluated_on as YYYY-MM-DD"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	var payload recordGradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if payload.Score == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "score is required"))
		return
	}
	evaluatedOn, err := parseDate("evaluated_on", payload.EvaluatedOn)
	if err != nil {
		response.Error(c, err)
		return
	}

	teacherID := payload.TeacherID
	if claims := claimsFromContext(c); claims != nil {
		if claims.Role == models.RoleTeacher || teacherID == "" {
			teacherID = claims.UserID
		}
	}

	result, err := h.grades.RecordGrade(c.Request.Context(), service.RecordGradeRequest{
		StudentID:        payload.StudentID,
		SubjectID:        payload.SubjectID,
		TeacherID:        teacherID,
		PeriodID:         payload.PeriodID,
		EvaluationTypeID: payload.EvaluationTypeID,
		Score:            *payload.Score,
		EvaluatedOn:      evaluatedOn,
		Notes:            payload.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}
