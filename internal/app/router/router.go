// Package router assembles the HTTP routes.
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	userhandler "social_backend/internal/feature/user/transport/handler"
	platformhandler "social_backend/internal/platform/http/handler"
	"social_backend/internal/platform/http/middleware"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/platform/ratelimit"
)

// NewRouter wires every route. jwtSecret verifies bearer tokens on the protected group.
func NewRouter(logger *slog.Logger, health *platformhandler.HealthHandler, users *userhandler.UserHandler,
	auth *userhandler.AuthHandler, limiter ratelimit.Limiter, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	api := r.Group("/api/users")

	// public, rate limited per client IP
	api.POST("/join", ratelimit.Middleware(limiter, "join"), users.Join)
	api.POST("/login", ratelimit.Middleware(limiter, "login"), auth.Login)

	protected := api.Group("")
	protected.Use(jwtmw.AuthRequired(jwtSecret))
	{
		protected.GET("", users.List)
		protected.GET("/:seq", users.Get)
		protected.DELETE("", users.Delete)
	}

	return r
}
