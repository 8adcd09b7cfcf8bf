package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"openai-image-gateway/internal/http/handlers"
	"openai-image-gateway/internal/http/middleware"
	"openai-image-gateway/internal/ratelimit"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	limiter      *ratelimit.Limiter
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		limiter:      limiter,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(r.limiter, r.logger))

	router.GET("/health", r.imageHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		images := v1.Group("/images")
		{
			images.POST("/generate", r.imageHandler.Generate)
			images.POST("/generate-from-references", r.imageHandler.GenerateFromReferences)
			images.POST("/edit", r.imageHandler.Edit)
			images.POST("/variations", r.imageHandler.Variations)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "OpenAI Image Gateway",
			"version": "1.0.0",
			"health":  "/health",
			"status":  "running",
		})
	})

	return router
}
