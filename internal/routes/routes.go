package routes

import (
	"net/http"

	"auction_backend/internal/handlers"
	"auction_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the HTTP API, health check and metrics endpoint.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.PropertyHandler.RegisterRoutes(api, authMW)
		appHandlers.AlertHandler.RegisterRoutes(api, authMW)
		appHandlers.ProfileHandler.RegisterRoutes(api, authMW)
		appHandlers.NotificationHandler.RegisterRoutes(api, authMW)
	}
	logger.Info("HTTP routes registered", "prefix", "/api/v1")
}
