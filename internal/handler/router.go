package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/config"
	"bendigotelco/connecthub/internal/handler/middleware"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	lookupHandler *LookupHandler,
	webhookHandler *WebhookHandler,
	callLogHandler *CallLogHandler,
	screenPopHandler *ScreenPopHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/customer-lookup", lookupHandler.Lookup)
		api.POST("/webhooks/halo", webhookHandler.Handle)
		api.POST("/call-logs", callLogHandler.Create)
		api.GET("/screen-pop", screenPopHandler.Get)
	}

	return r
}
