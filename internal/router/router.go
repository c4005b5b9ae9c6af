// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/studio-show-scheduling/internal/config"
	"github.com/iliyamo/studio-show-scheduling/internal/handler"
	"github.com/iliyamo/studio-show-scheduling/internal/middleware"
	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth; /v1/me and logout sit behind the JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RolePlanner))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterSchedules registers the schedule lifecycle and bulk endpoints.
// All of them require an authenticated planner or admin.  Publishing is
// restricted to admins: planners prepare and validate, admins sign off.
func RegisterSchedules(e *echo.Echo, h *handler.ScheduleHandler, b *handler.BulkHandler, jwtSecret string) {
	g := e.Group("/v1/schedules")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RolePlanner))

	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/plan", h.UpdatePlan)
	g.GET("/:id/validation", h.Validate)
	g.POST("/:id/review", h.SubmitReview)
	g.POST("/:id/duplicate", h.Duplicate)
	g.POST("/:id/snapshots", h.CreateSnapshot)
	g.GET("/:id/snapshots", h.ListSnapshots)

	// Static /bulk wins over /:id in echo's routing, so both can share the
	// group.
	g.POST("/bulk", b.BulkCreate)
	g.PATCH("/bulk", b.BulkUpdate)

	publish := e.Group("/v1/schedules")
	publish.Use(middleware.JWTAuth(jwtSecret))
	publish.Use(middleware.RequireRole(model.RoleAdmin))
	publish.POST("/:id/publish", h.Publish)
}

// RegisterShows registers the persisted-show and assignment endpoints.
func RegisterShows(e *echo.Echo, h *handler.ShowHandler, jwtSecret string) {
	g := e.Group("/v1/shows")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RolePlanner))

	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.PATCH("/:id/mcs/replace", h.ReplaceHosts)
	g.PATCH("/:id/platforms/replace", h.ReplacePlatforms)
	g.DELETE("/:id/mcs", h.RemoveHosts)
	g.DELETE("/:id/platforms", h.RemovePlatforms)
}

// referenceRoutes maps browse paths to resolver kinds.
var referenceRoutes = map[string]string{
	"/clients":        model.KindClient,
	"/rooms":          model.KindRoom,
	"/hosts":          model.KindHost,
	"/platforms":      model.KindPlatform,
	"/show-types":     model.KindShowType,
	"/show-statuses":  model.KindShowStatus,
	"/show-standards": model.KindShowStandard,
}

// RegisterReference registers the read-only lookup endpoints.  They sit
// behind the JWT middleware plus the Redis response cache; the lookup tables
// change rarely and are hit on every planning session.
func RegisterReference(e *echo.Echo, h *handler.ReferenceHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RolePlanner))
	g.Use(middleware.NewRedisCache(cacheCfg, rdb))

	for path, kind := range referenceRoutes {
		g.GET(path, h.ListKind(kind))
	}
}
