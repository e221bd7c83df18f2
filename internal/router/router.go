package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/mkarlis/roomcast/internal/handler"
	"github.com/mkarlis/roomcast/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// dependencies. Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers operator login under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/auth/login", a.Login)
}

// RegisterDevices registers the device lifecycle. Claim is the one public
// endpoint (rate limited — it is where pairing codes could be ground),
// heartbeat authenticates by device token inside the handler, and the
// provisioning/fleet endpoints require an ADMIN JWT.
func RegisterDevices(e *echo.Echo, d *handler.DeviceHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.POST("/v1/devices/claim", d.Claim, rateLimit)
	e.POST("/v1/devices/heartbeat", d.Heartbeat)

	admin := e.Group("/v1/devices")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/provision", d.Provision)
	admin.POST("/reassign", d.Reassign)
	admin.GET("", d.List)
}

// RegisterSessions registers the room session surface. The read admits
// either an operator JWT or the room's own device token and is served
// through the poll cache; commands require an operator or admin JWT.
// Route middleware runs in registration order, so authentication always
// precedes the cache.
func RegisterSessions(e *echo.Echo, s *handler.SessionHandler, jwtSecret string, devices middleware.DeviceLookup, pollCache echo.MiddlewareFunc) {
	e.GET("/v1/rooms/:room_id/session", s.GetState,
		middleware.SessionRead(jwtSecret, devices), pollCache)
	e.POST("/v1/rooms/:room_id/session", s.Command,
		middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN", "OPERATOR"))
}

// RegisterAccess registers the allow-list administration and the catalog
// listing, all behind an ADMIN JWT.
func RegisterAccess(e *echo.Echo, a *handler.AccessHandler, cat *handler.CatalogHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/licensees/:id/videos", a.GetAllowed)
	g.PUT("/licensees/:id/videos", a.ReplaceAllowed)
	g.POST("/licensees/:id/videos", a.AddAllowed)
	g.DELETE("/licensees/:id/videos/:label", a.RemoveAllowed)
	g.GET("/videos", cat.ListVideos)
}
