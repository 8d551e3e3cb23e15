package handler

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type activePeriodSource interface {
	Active(ctx context.Context) (*models.GradingPeriod, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// periodFromQuery reads periodId, falling back to the active grading period.
func periodFromQuery(c *gin.Context, periods activePeriodSource) (string, error) {
	if id := strings.TrimSpace(c.Query("periodId")); id != "" {
		return id, nil
	}
	if periods == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "periodId is required")
	}
	active, err := periods.Active(c.Request.Context())
	if err != nil {
		return "", err
	}
	return active.ID, nil
}

// floatQuery parses an optional numeric query parameter. Missing values yield zero.
func floatQuery(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return v, nil
}

func parseDate(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must be YYYY-MM-DD")
	}
	return t, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
