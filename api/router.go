package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/api/handler"
	"github.com/use-agent/rankcheck/api/middleware"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/jobs"
	"github.com/use-agent/rankcheck/metrics"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled)
//	Starts:  RateLimit (POST /check, POST /jobs)
//
// The form, health and metrics endpoints stay outside auth so browsers and
// monitoring probes always reach them.
func NewRouter(rc handler.RankChecker, ps handler.PoolStatter, jm *jobs.Manager, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	authRequired := cfg.Auth.Enabled && len(cfg.Auth.APIKeys) > 0
	r.GET("/", handler.Index(authRequired))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(ps, jm, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	limit := middleware.RateLimit(cfg.RateLimit)

	protected.POST("/check", limit, handler.Check(rc))

	protected.POST("/jobs", limit, handler.PostJob(jm))
	protected.GET("/jobs/:id", handler.GetJob(jm))
	protected.GET("/jobs/:id/screenshot", handler.GetScreenshot(jm))
	protected.GET("/jobs/:id/results.csv", handler.GetResultsCSV(jm))

	return r
}
