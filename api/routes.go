package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/LeiShi1313/readrepeat/api/audiofiles"
	"github.com/LeiShi1313/readrepeat/api/auth"
	"github.com/LeiShi1313/readrepeat/api/health"
	"github.com/LeiShi1313/readrepeat/api/jobs"
	"github.com/LeiShi1313/readrepeat/api/lessons"
	"github.com/LeiShi1313/readrepeat/api/recordings"
	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/api/version"
	_ "github.com/LeiShi1313/readrepeat/docs/swagger"
	"github.com/LeiShi1313/readrepeat/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limits config.RateLimitConfig, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	apiGroup := engine.Group("/api")
	if limits.Enabled {
		apiGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, limits.APIRPS, limits.APIBurst))
	}

	lessons.RegisterRoutes(apiGroup.Group("/lessons"), deps)
	recordings.RegisterRoutes(apiGroup, deps)
	audiofiles.RegisterRoutes(apiGroup.Group("/audio-files"), deps)
	jobs.RegisterRoutes(apiGroup.Group("/jobs"), deps)

	// Worker protocol: token check first so the limiter keys on the worker name.
	// Workers poll on a timer, so they get their own budget instead of the API one.
	authHandler := auth.NewHandler(deps.AuthService)
	workerGroup := engine.Group("/api/jobs")
	workerGroup.Use(authHandler.WorkerMiddleware())
	if limits.Enabled {
		workerGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, limits.WorkerRPS, limits.WorkerBurst))
	}
	jobs.RegisterWorkerRoutes(workerGroup, deps)
	workerGroup.GET("/whoami", authHandler.Whoami)
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
