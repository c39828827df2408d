package web

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const maxUploadSize = "32M"

// Register wires the flight endpoints. Every path which is not handled otherwise answers 405.
func Register(e *echo.Echo, fh *FlightsHandler, uploadLimiter *rate.Limiter) {
	e.GET("/health", fh.Health)

	e.Any("/upload", fh.UploadMethodNotAllowed)
	e.POST(
		"/upload",
		fh.Upload,
		RateLimitMiddleware(uploadLimiter),
		middleware.BodyLimit(maxUploadSize),
	)

	for path, handler := range map[string]echo.HandlerFunc{
		"/flights": fh.Flights,
		"/route":   fh.Route,
		"/routes":  fh.Routes,
	} {
		e.Any(path, fh.Fallback)
		e.GET(path, handler)
	}

	e.RouteNotFound("/*", fh.Fallback)
}
