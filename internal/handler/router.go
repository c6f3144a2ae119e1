package handler

import (
	"github.com/akuzmin/shortlinks/internal/config"
	"github.com/akuzmin/shortlinks/internal/middleware"
	"github.com/akuzmin/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(
	linkService service.LinkService,
	userService service.UserService,
	cfg *config.Config,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Сбор метрик для всех запросов
	router.Use(middleware.Metrics())

	linkHandler := NewLinkHandler(linkService, cfg.App.BaseURL, logger)
	authHandler := NewAuthHandler(userService, cfg, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/signin", authHandler.Signin)
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.GET("/github", authHandler.GithubLogin)
			auth.GET("/github/callback", authHandler.GithubCallback)
		}

		// Управление ссылками - только для аутентифицированных пользователей
		links := v1.Group("/links")
		links.Use(middleware.RequireAuth([]byte(cfg.Auth.JWTSecret)))
		{
			links.POST("", linkHandler.CreateLink)
			links.GET("", linkHandler.ListLinks)
			links.PATCH("/:id", linkHandler.UpdateLink)
			links.DELETE("/:id", linkHandler.DeleteLink)
		}
	}

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Редирект (корневой путь) - публичный, без аутентификации
	router.GET("/:code", linkHandler.Redirect)

	// Swagger документация
	AddSwaggerRoutes(router)

	return router
}
