package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/freedom_case_2/opsmetrics/internal/config"
	"github.com/freedom_case_2/opsmetrics/internal/http/handlers"
	"github.com/freedom_case_2/opsmetrics/internal/http/middleware"

	_ "github.com/freedom_case_2/opsmetrics/docs"
)

func Router(cfg config.Config, h *handlers.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if otel := cfg.OTel(); otel.Enabled() {
		r.Use(otelgin.Middleware(otel.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		for _, o := range strings.Split(cfg.CORSAllowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		api.GET("/metrics", h.GetMetrics)
		api.GET("/cases", h.CasesList)
		api.GET("/cases/export", h.CasesExport)
		api.GET("/conversations", h.ConversationsList)
		api.GET("/conversations/:phone", h.ConversationDetails)
		api.GET("/satisfaction", h.GetSatisfaction)
		api.GET("/reports", h.GetReport)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
