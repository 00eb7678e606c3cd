// Package router assembles the operational HTTP surface.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
)

// New builds the gin engine serving the ops endpoints. The surface is not
// authenticated and must only be bound to an internal interface.
func New(env string, log *zap.Logger, metrics *telemetry.BotMetrics, system *handler.SystemHandler) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/healthz", system.Health)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/system/info", system.GetSystemInfo)

	return engine
}
