package web

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"net/http"
)

func NoCacheOnErrorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				noCache(c)
			}

			return err
		}
	}
}

// ErrorLogAndMaskMiddleware renders *HTTPError as plain text and replaces every other error
// with a plain 500, logging server side errors.
func ErrorLogAndMaskMiddleware(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Error(err),
			}

			var httpErr *HTTPError
			var echoErr *echo.HTTPError
			switch {
			case errors.As(err, &httpErr):
				if httpErr.code >= http.StatusInternalServerError {
					log.Error("request failed", fields...)
				} else if httpErr.cause != nil {
					log.Info("request rejected", fields...)
				}

				if c.Response().Committed {
					return nil
				}

				return c.String(httpErr.code, httpErr.Body())

			case errors.As(err, &echoErr):
				return err

			default:
				log.Error("unexpected error", fields...)

				if c.Response().Committed {
					return nil
				}

				return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
		}
	}
}

// RateLimitMiddleware rejects requests with 429 once the limiter has no tokens left.
func RateLimitMiddleware(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return NewHTTPError(http.StatusTooManyRequests, WithMessage("Too many uploads, try again later"))
			}

			return next(c)
		}
	}
}
