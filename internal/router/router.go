package router

import (
	"github.com/gin-gonic/gin"

	"github.com/forkbook/backend/internal/api"
	"github.com/forkbook/backend/internal/middleware"
)

// Setup configures the application routes. rateLimiter may be nil, in
// which case the open endpoints run without throttling.
func Setup(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	authService middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", api.HealthCheck)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	// Open recipe reads: anonymous allowed, throttled per client IP.
	open := v1.Group("")
	open.Use(middleware.OptionalAuthMiddleware(authService))
	if rateLimiter != nil {
		open.Use(rateLimiter.Middleware())
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	recipeHandler.RegisterRoutes(open, protected)

	return router
}
