package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
)

func newProtectedEngine(auth *service.AuthService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(auth))
	r.POST("/grades", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	auth := service.NewAuthService(service.AuthConfig{Secret: "s3cret", Expiration: time.Hour})
	r := newProtectedEngine(auth, models.RoleTeacher)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/grades", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireRoles(t *testing.T) {
	auth := service.NewAuthService(service.AuthConfig{Secret: "s3cret", Expiration: time.Hour})
	r := newProtectedEngine(auth, models.RoleTeacher, models.RoleAdmin)

	cases := map[models.UserRole]int{
		models.RoleTeacher: http.StatusNoContent,
		models.RoleAdmin:   http.StatusNoContent,
		models.RoleStaff:   http.StatusForbidden,
	}
	for role, want := range cases {
		token, _, err := auth.IssueToken("user-1", role, "u@example.org", "User")
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/grades", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %s", role)
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, uint64(4), metrics.Snapshot().RequestsTotal)
}
