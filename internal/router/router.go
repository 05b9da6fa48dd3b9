package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/market-queue/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/market-queue/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff authentication routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "STAFF"))
	auth.GET("/me", a.Me)
}

// RegisterQueue wires the queue endpoints.  Kiosk registration and the
// read-only views are public (registration kiosks and the waiting-area
// display carry no credentials); billing and exit verification require
// a staff token, and the billing reversal is restricted to ADMIN.
// cacheQueue, when non-nil, is applied to the live queue view only –
// every other read must reflect the store at call time.
func RegisterQueue(e *echo.Echo,
	reg *handler.RegistrationHandler,
	bill *handler.BillingHandler,
	verify *handler.VerificationHandler,
	view *handler.QueueHandler,
	jwtSecret string,
	cacheQueue echo.MiddlewareFunc,
) {
	// Public kiosk and display surface.
	e.POST("/v1/queue/register", reg.Register)
	if cacheQueue != nil {
		e.GET("/v1/queue", view.Active, cacheQueue)
	} else {
		e.GET("/v1/queue", view.Active)
	}
	e.GET("/v1/queue/metrics", view.Metrics)
	e.GET("/v1/queue/history", view.History)
	e.GET("/v1/entries/:id/position", view.Position)
	e.GET("/v1/entries/:id/credential", reg.Credential)

	// Staff-only transitions.
	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole("ADMIN", "STAFF"))
	staff.POST("/entries/:id/bill", bill.Bill)
	staff.POST("/verify", verify.Verify)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/entries/:id/undo-bill", bill.UndoBill)
}
