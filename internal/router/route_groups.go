package router

import (
	"net/http"

	"gym_backend/internal/handlers"
	"gym_backend/internal/middleware"
	"gym_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupSystemRoutes sets up the liveness and metrics routes outside /api/v1.
func SetupSystemRoutes(engine *gin.Engine, metricsHandler http.Handler) {
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(metricsHandler))
	}
}

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupSettingsRoutes sets up the settings routes.
// Any authenticated role may read; writes and connection tests need an administrator.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingsHandler *handlers.SettingsHandler) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	{
		settingsRoutes.GET("", settingsHandler.GetSettings)
		settingsRoutes.GET("/:category", settingsHandler.GetSettingByCategory)
		settingsRoutes.GET("/:category/items", settingsHandler.GetSettingItems)
	}

	settingsWriteRoutes := authenticatedGroup.Group("/settings")
	settingsWriteRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		settingsWriteRoutes.POST("/:category", settingsHandler.UpdateSettings)
		settingsWriteRoutes.POST("/:category/test", settingsHandler.TestSettings)
	}
}
