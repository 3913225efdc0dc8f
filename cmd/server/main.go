package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_backend/internal/config"
	"gym_backend/internal/database"
	"gym_backend/internal/metrics"
	"gym_backend/internal/repositories"
	"gym_backend/internal/router"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", "json")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.InitJWT(cfg.JWTSecret, cfg.JWTExpiration)
	if cfg.JWTSecret == "" {
		utils.LogWarn(nil, "JWT_SECRET is not set, using the built-in development secret")
	}

	cipher, err := utils.NewSecretCipher(cfg.EncryptionKey, cfg.CipherVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build settings cipher")
	}
	if cfg.UsingDefaultKey {
		utils.LogWarn(nil, "ENCRYPTION_KEY is not set, stored secrets use the default key", map[string]interface{}{"cipher_version": cipher.Version()})
	}

	ctx := context.Background()
	db, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	authService := services.NewAuthService(repositories.NewAuthRepository(db))
	created, err := authService.EnsureSuperAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap super admin")
	}
	if created {
		utils.LogInfo("Bootstrap super admin created", map[string]interface{}{"username": cfg.BootstrapAdminUsername})
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, cipher, metrics.New(), promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "api": "/api/v1"})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
