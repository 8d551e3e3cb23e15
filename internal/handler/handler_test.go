package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository/memory"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type fakeActivePeriod struct {
	period *models.GradingPeriod
	err    error
	calls  int
}

func (f *fakeActivePeriod) Active(context.Context) (*models.GradingPeriod, error) {
	f.calls++
	return f.period, f.err
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestPeriodFromQuery(t *testing.T) {
	source := &fakeActivePeriod{period: &models.GradingPeriod{ID: "term-2"}}

	c, _ := newContext(http.MethodGet, "/risk/at-risk?periodId=term-1", nil)
	id, err := periodFromQuery(c, source)
	require.NoError(t, err)
	assert.Equal(t, "term-1", id)
	assert.Zero(t, source.calls)

	c, _ = newContext(http.MethodGet, "/risk/at-risk", nil)
	id, err = periodFromQuery(c, source)
	require.NoError(t, err)
	assert.Equal(t, "term-2", id)

	source.err = appErrors.Clone(appErrors.ErrNotFound, "no active grading period")
	c, _ = newContext(http.MethodGet, "/risk/at-risk", nil)
	_, err = periodFromQuery(c, source)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestFloatQueryAndParseDate(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/x?threshold=6.5&bad=six&inf=Inf", nil)
	v, err := floatQuery(c, "threshold")
	require.NoError(t, err)
	assert.Equal(t, 6.5, v)
	_, err = floatQuery(c, "bad")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = floatQuery(c, "inf")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	v, err = floatQuery(c, "missing")
	require.NoError(t, err)
	assert.Zero(t, v)

	d, err := parseDate("evaluated_on", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)
	_, err = parseDate("evaluated_on", "05/03/2024")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

type gradeFixture struct {
	handler  *GradeHandler
	student  models.Student
	subject  models.Subject
	period   models.GradingPeriod
	evalType models.EvaluationType
}

func newGradeFixture(t *testing.T) gradeFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	students := memory.NewStudentRepository(store)
	subjects := memory.NewSubjectRepository(store)
	periods := memory.NewPeriodRepository(store)
	evalTypes := memory.NewEvaluationTypeRepository(store)

	f := gradeFixture{
		student:  models.Student{FirstName: "Ana", LastName: "Diaz", NationalID: "1", GradeLevel: "10", Section: "A", Active: true},
		subject:  models.Subject{Name: "Mathematics", Code: "MAT", GradeLevel: "10", Section: "A"},
		period:   models.GradingPeriod{Name: "Term 1", StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), Active: true},
		evalType: models.EvaluationType{Name: "Exam", Weight: 40},
	}
	require.NoError(t, students.Create(ctx, &f.student))
	require.NoError(t, subjects.Create(ctx, &f.subject))
	require.NoError(t, periods.Create(ctx, &f.period))
	require.NoError(t, evalTypes.Create(ctx, &f.evalType))

	averages := service.NewAverageService(memory.NewSubjectAverageRepository(store), nil, nil, nil, zap.NewNop())
	grades := service.NewGradeService(service.GradeServiceDeps{
		Grades:          memory.NewGradeEntryRepository(store),
		Students:        students,
		Subjects:        subjects,
		Periods:         periods,
		EvaluationTypes: evalTypes,
		Averages:        averages,
	}, service.GradeConfig{MinScore: 1, MaxScore: 10, AtRiskThreshold: 6})
	f.handler = NewGradeHandler(grades)
	return f
}

func (f gradeFixture) payload(score interface{}) map[string]interface{} {
	p := map[string]interface{}{
		"student_id":         f.student.ID,
		"subject_id":         f.subject.ID,
		"period_id":          f.period.ID,
		"evaluation_type_id": f.evalType.ID,
		"teacher_id":         "someone-else",
		"evaluated_on":       "2024-03-01",
	}
	if score != nil {
		p["score"] = score
	}
	return p
}

func TestGradeHandlerRecordsUnderTeacherIdentity(t *testing.T) {
	f := newGradeFixture(t)
	c, rec := newContext(http.MethodPost, "/grades", f.payload(8.5))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-7", Role: models.RoleTeacher})

	f.handler.Record(c)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result models.GradeRecordResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "teacher-7", result.Entry.TeacherID)
	assert.Equal(t, 8.5, result.SubjectAverage.Average)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), result.Entry.EvaluatedOn.UTC())
}

func TestGradeHandlerAdminKeepsPayloadTeacher(t *testing.T) {
	f := newGradeFixture(t)
	c, rec := newContext(http.MethodPost, "/grades", f.payload(7))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	f.handler.Record(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var result models.GradeRecordResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "someone-else", result.Entry.TeacherID)
}

func TestGradeHandlerRejectsBadInput(t *testing.T) {
	f := newGradeFixture(t)
	claims := &models.JWTClaims{UserID: "teacher-7", Role: models.RoleTeacher}

	cases := map[string]map[string]interface{}{
		"missing score": f.payload(nil),
		"score too low": f.payload(0.5),
		"bad date": func() map[string]interface{} {
			p := f.payload(8)
			p["evaluated_on"] = "March 1st"
			return p
		}(),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/grades", body)
			c.Set(middleware.ContextUserKey, claims)
			f.handler.Record(c)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
		})
	}
}

func TestClassifyHandler(t *testing.T) {
	h := NewRiskHandler(nil, nil)

	c, rec := newContext(http.MethodGet, "/classify?average=5.999", nil)
	h.Classify(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"average":5.999,"category":"At-Risk"}`, string(decode(t, rec).Data))

	c, rec = newContext(http.MethodGet, "/classify", nil)
	h.Classify(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadyReportsFailingCheck(t *testing.T) {
	h := NewMetricsHandler(nil, nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"cache":    func(context.Context) error { return assert.AnError },
	})
	c, rec := newContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}
