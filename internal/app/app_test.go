package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
)

const testSecret = "test-secret"

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct{ Code string } `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type harness struct {
	t      *testing.T
	app    *App
	tokens map[models.UserRole]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Env:       "test",
		APIPrefix: "/api/v1",
		Database:  config.DatabaseConfig{Driver: config.DriverMemory, SeedSample: true},
		JWT:       config.JWTConfig{Secret: testSecret, Expiration: time.Hour},
		Grading:   config.GradingConfig{MinScore: 1, MaxScore: 10, AtRiskThreshold: 6},
	}
	ctx := context.Background()
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() { _ = a.Close() })

	auth := service.NewAuthService(service.AuthConfig{Secret: testSecret, Expiration: time.Hour})
	h := &harness{t: t, app: a, tokens: map[models.UserRole]string{}}
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStaff} {
		token, _, err := auth.IssueToken(strings.ToLower(string(role))+"-1", role, "", "")
		require.NoError(t, err)
		h.tokens[role] = token
	}
	return h
}

func (h *harness) do(role models.UserRole, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+h.tokens[role])
	}
	rec := httptest.NewRecorder()
	h.app.Engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (h *harness) studentID(lastName string) string {
	h.t.Helper()
	_, env := h.do(models.RoleStaff, http.MethodGet, "/api/v1/students?search="+lastName, nil)
	var students []models.Student
	require.NoError(h.t, json.Unmarshal(env.Data, &students))
	require.NotEmpty(h.t, students)
	return students[0].ID
}

func TestOpsEndpoints(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do("", http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec, _ = h.do("", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestAPIRequiresToken(t *testing.T) {
	h := newHarness(t)
	rec, env := h.do("", http.MethodGet, "/api/v1/students", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestSeededAtRiskList(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(models.RoleStaff, http.MethodGet, "/api/v1/risk/at-risk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.StudentGeneralAverage
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Torres", rows[0].LastName)
	assert.Less(t, rows[0].GeneralAverage, 6.0)
	assert.Equal(t, models.CategoryAtRisk, rows[0].Category)

	rec, _ = h.do(models.RoleStaff, http.MethodGet, "/api/v1/risk/at-risk/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Torres, Camila")

	rec, _ = h.do(models.RoleStaff, http.MethodGet, "/api/v1/risk/at-risk/export?format=xls", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordGradeFlow(t *testing.T) {
	h := newHarness(t)
	lopez := h.studentID("Lopez")

	_, env := h.do(models.RoleTeacher, http.MethodGet, "/api/v1/periods/active", nil)
	var period models.GradingPeriod
	require.NoError(t, json.Unmarshal(env.Data, &period))

	_, env = h.do(models.RoleTeacher, http.MethodGet, "/api/v1/subjects", nil)
	var subjects []models.Subject
	require.NoError(t, json.Unmarshal(env.Data, &subjects))
	require.NotEmpty(t, subjects)

	_, env = h.do(models.RoleTeacher, http.MethodGet, "/api/v1/evaluation-types", nil)
	var types []models.EvaluationType
	require.NoError(t, json.Unmarshal(env.Data, &types))
	require.NotEmpty(t, types)

	payload := map[string]interface{}{
		"student_id":         lopez,
		"subject_id":         subjects[0].ID,
		"period_id":          period.ID,
		"evaluation_type_id": types[len(types)-1].ID,
		"score":              11.0,
		"evaluated_on":       period.StartDate.AddDate(0, 2, 0).Format("2006-01-02"),
	}
	rec, env := h.do(models.RoleTeacher, http.MethodPost, "/api/v1/grades", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = h.do(models.RoleStaff, http.MethodPost, "/api/v1/grades", payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	payload["score"] = 1.0
	rec, env = h.do(models.RoleTeacher, http.MethodPost, "/api/v1/grades", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result models.GradeRecordResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "teacher-1", result.Entry.TeacherID)
	require.NotNil(t, result.SubjectAverage)
	assert.Equal(t, 3, result.SubjectAverage.GradeCount)

	rec, env = h.do(models.RoleTeacher, http.MethodGet, "/api/v1/students/"+lopez+"/averages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var card models.ReportCard
	require.NoError(t, json.Unmarshal(env.Data, &card))
	assert.Equal(t, period.ID, card.PeriodID)
	assert.Len(t, card.Subjects, 4)

	rec, _ = h.do(models.RoleTeacher, http.MethodPost, "/api/v1/averages/rebuild", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, env = h.do(models.RoleAdmin, http.MethodPost, "/api/v1/averages/rebuild", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":20}`, string(env.Data))
}

func TestClassifyEndpoint(t *testing.T) {
	h := newHarness(t)
	rec, env := h.do(models.RoleStaff, http.MethodGet, "/api/v1/classify?average=8.999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"average":8.999,"category":"Very Good"}`, string(env.Data))

	rec, _ = h.do(models.RoleStaff, http.MethodGet, "/api/v1/classify?average=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
