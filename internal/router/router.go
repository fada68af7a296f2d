package router

import (
	"net/http"
	"time"

	"opsdash/internal/apierror"
	"opsdash/internal/config"
	"opsdash/internal/dto"
	"opsdash/internal/handler"
	"opsdash/internal/metrics"
	"opsdash/internal/middleware"
	"opsdash/internal/model"
	"opsdash/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived objects the routes are served from.
type Deps struct {
	Dataset   *model.Dataset
	Cleaning  dto.CleaningReport
	Dashboard service.DashboardService
	Export    service.ExportService
	Metrics   *metrics.Metrics
	Limiter   *middleware.RateLimiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Dataset ← Repository
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	dashH := handler.NewDashboardHandler(d.Dashboard, d.Export)

	// ── Public ───────────────────────────────────────────────────────────────
	r.GET("/", dashH.Page)
	r.GET("/health", handler.Health(d.Dataset, d.Cleaning, d.Dashboard))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// ── API v1 ───────────────────────────────────────────────────────────────
	v1 := r.Group("/v1", limiter.Handler())
	{
		v1.GET("/dashboard", dashH.Dashboard)
		v1.GET("/views/:name", dashH.View)
		v1.GET("/views/:name/chart.png", dashH.ChartPNG)
		v1.POST("/choropleth", dashH.Choropleth)

		export := v1.Group("/export")
		export.GET("/dashboard.xlsx", dashH.Workbook)
		export.GET("/report.pdf", dashH.Report)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.New("not found"))
	})

	return r
}
