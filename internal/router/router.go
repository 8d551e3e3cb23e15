// Package router assembles the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/handler"
	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Students *handler.StudentHandler
	Subjects *handler.SubjectHandler
	Periods  *handler.PeriodHandler
	Grades   *handler.GradeHandler
	Averages *handler.AverageHandler
	Risk     *handler.RiskHandler
	Metrics  *handler.MetricsHandler
}

// Setup builds the engine. Ops endpoints sit at the root; the API lives under cfg.APIPrefix.
func Setup(cfg *config.Config, h Handlers, auth middleware.TokenValidator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(auth))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	gradeWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	students := api.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", staffWrite, h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.DELETE("/:id", staffWrite, h.Students.Delete)
		students.GET("/:id/grades", h.Students.Grades)
		students.GET("/:id/averages", h.Students.Averages)
	}

	subjects := api.Group("/subjects")
	{
		subjects.GET("", h.Subjects.List)
		subjects.POST("", staffWrite, h.Subjects.Create)
		subjects.GET("/:id", h.Subjects.Get)
	}

	periods := api.Group("/periods")
	{
		periods.GET("", h.Periods.List)
		periods.POST("", adminOnly, h.Periods.Create)
		periods.GET("/active", h.Periods.Active)
		periods.GET("/:id", h.Periods.Get)
	}
	api.GET("/evaluation-types", h.Periods.EvaluationTypes)
	api.POST("/evaluation-types", adminOnly, h.Periods.CreateEvaluationType)

	api.POST("/grades", gradeWrite, h.Grades.Record)
	api.POST("/averages/recompute", gradeWrite, h.Averages.Recompute)
	api.POST("/averages/rebuild", adminOnly, h.Averages.Rebuild)

	risk := api.Group("/risk")
	{
		risk.GET("/at-risk", h.Risk.AtRisk)
		risk.GET("/at-risk/export", h.Risk.Export)
		risk.GET("/distribution", h.Risk.Distribution)
	}
	api.GET("/classify", h.Risk.Classify)
	api.GET("/ops/summary", adminOnly, h.Metrics.Summary)

	return r
}
