package router

import (
	"database/sql"
	"net/http"

	"gym_backend/internal/handlers"
	"gym_backend/internal/metrics"
	"gym_backend/internal/middleware"
	"gym_backend/internal/repositories"
	"gym_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cipher services.FieldCipher, m *metrics.Collector, metricsHandler http.Handler) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo)
	settingsService := services.NewSettingsService(settingsRepo, cipher, m)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	SetupSystemRoutes(engine, metricsHandler)

	apiV1 := engine.Group("/api/v1")
	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupSettingsRoutes(authenticated, settingsHandler)
	}
}
