package router

import (
	"context"
	"fmt"

	"thundergames/backend/internal/auth"
	"thundergames/backend/internal/config"
	"thundergames/backend/internal/database"
	"thundergames/backend/internal/handler"
	"thundergames/backend/internal/logger"
	"thundergames/backend/internal/metrics"
	"thundergames/backend/internal/service"
	"thundergames/backend/internal/web"
	"thundergames/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "thundergames/backend/docs" // registers the swagger docs
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Tokens  *jwt.Manager
	Metrics *metrics.Metrics
}

// New builds the engine with every page and API route mounted.
func New(d Deps) (*gin.Engine, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	folders := service.NewFolderService(d.DB)
	games := service.NewGameService(d.DB)
	users := service.NewAuthService(d.DB)

	folderHandler := handler.NewFolderHandler(folders, games, d.Log)
	gameHandler := handler.NewGameHandler(games, d.Log)
	authHandler := handler.NewAuthHandler(users, d.Tokens, auth.NewLoginLimiter(d.Config.LoginRatePerMinute),
		handler.CookieConfig{Name: d.Config.SessionCookieName, Secure: d.Config.SessionCookieSecure}, d.Log)
	pageHandler := handler.NewPageHandler(folders, games, func(ctx context.Context) error {
		return database.Ping(ctx, d.DB)
	}, d.Log)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		logger.RequestLogger(d.Log),
		gin.Recovery(),
		d.Metrics.Middleware(),
		auth.Identify(d.Tokens, users, d.Config.SessionCookieName),
	)

	router.StaticFS("/static", web.Static())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", d.Metrics.Handler())

	// API routes
	api := router.Group("/api")
	{
		public := api.Group("/public")
		admin := api.Group("", auth.RequireSuperuserAPI())

		folderHandler.RegisterRoutes(admin, public)
		gameHandler.RegisterRoutes(admin, public)
	}

	// Pages
	adminPages := router.Group("", auth.RequireSuperuserPage(handler.LoginPath))
	pageHandler.RegisterRoutes(router, adminPages)
	authHandler.RegisterRoutes(api, router)

	return router, nil
}
