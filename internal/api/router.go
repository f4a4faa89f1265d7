package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/vidfeed/internal/api/handler"
	"github.com/timmy/vidfeed/internal/api/middleware"
	"github.com/timmy/vidfeed/internal/config"
)

// RouterConfig collects what the HTTP layer needs.
type RouterConfig struct {
	Mode      string
	CORS      config.CORSConfig
	JWTSecret string
	Feed      *handler.FeedHandler
	Health    *handler.HealthHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cfg.CORS))

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Health)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		v1.GET("/feed", cfg.Feed.GetFeed)
	}

	return r
}
