package router

import (
	"time"

	"github.com/lagabyok/SabIA-agent/internal/config"
	"github.com/lagabyok/SabIA-agent/internal/handler"
	"github.com/lagabyok/SabIA-agent/internal/ingest"
	"github.com/lagabyok/SabIA-agent/internal/llm"
	"github.com/lagabyok/SabIA-agent/internal/middleware"
	"github.com/lagabyok/SabIA-agent/internal/repository"
	"github.com/lagabyok/SabIA-agent/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository/DataSource ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimiter(300, time.Minute, "Demasiadas solicitudes. Intente nuevamente en un momento."))

	// ── Wiring ───────────────────────────────────────────────────────────────
	runRepo := repository.NewRunRepository(db)
	loader := ingest.NewCSVLoader(cfg.DataDir)
	providers := func(name string) llm.Provider { return llm.ForName(name, cfg) }

	analisisSvc := service.NewAnalisisService(loader, runRepo, rdb, providers, cfg)
	authSvc := service.NewAuthService(cfg)

	analisisH := handler.NewAnalisisHandler(analisisSvc, cfg.PDFStoragePath)
	authH := handler.NewAuthHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.POST("/run", analisisH.Ejecutar)
		v1.GET("/runs/latest", analisisH.UltimoRun)
		v1.GET("/runs", analisisH.ListarRuns)
		v1.GET("/runs/:run_id", analisisH.ObtenerRun)
		v1.GET("/runs/:run_id/pdf", analisisH.DescargarPDF)
	}

	return r
}
