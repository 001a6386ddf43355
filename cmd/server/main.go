package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"thundergames/backend/internal/config"
	"thundergames/backend/internal/database"
	"thundergames/backend/internal/logger"
	"thundergames/backend/internal/metrics"
	"thundergames/backend/internal/router"
	"thundergames/backend/internal/service"
	"thundergames/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	config.LoadConfig()
}

// @title           Thunder Games API
// @version         1.0
// @description     Catalog of games organised into folders, with public search and an admin API.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey SessionAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Unable to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	// Connect to the database
	database.Connect(cfg.DatabaseURL, zlog)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		zlog.Warn("JWT_SECRET is not set; using a random secret, sessions will not survive a restart")
	}
	tokens := jwt.NewManager(secret, cfg.SessionTTL)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := service.NewAuthService(database.DB).EnsureSuperuser(ctx, cfg.AdminUsername, cfg.AdminPassword)
		cancel()
		if err != nil {
			zlog.Fatal("Failed to ensure superuser", zap.String("username", cfg.AdminUsername), zap.Error(err))
		}
		zlog.Info("Superuser ready", zap.String("username", cfg.AdminUsername))
	}

	engine, err := router.New(router.Deps{
		Config:  cfg,
		DB:      database.DB,
		Log:     zlog,
		Tokens:  tokens,
		Metrics: metrics.New(),
	})
	if err != nil {
		zlog.Fatal("Failed to build router", zap.Error(err))
	}

	addr := ":" + cfg.Port
	zlog.Info("Server is running", zap.String("addr", addr), zap.String("swagger", "http://localhost"+addr+"/swagger/index.html"))
	if err := engine.Run(addr); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Unable to generate a session secret: %v", err)
	}
	return hex.EncodeToString(b)
}
