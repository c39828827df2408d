package web

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
)

func noCache(c echo.Context) {
	res := c.Response()
	res.Header().Del("Expires")
	res.Header().Set(echo.HeaderCacheControl, "private, no-cache, no-store, max-age=0, must-revalidate")
}

type HTTPErrorOption func(e *HTTPError)

type HTTPError struct {
	code        int
	message     string
	cause       error
	unmaskCause bool
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d %s: %s", e.code, e.message, e.cause)
	}

	return fmt.Sprintf("%d %s", e.code, e.message)
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Body is the text sent to the client. The cause is only included if it was unmasked.
func (e *HTTPError) Body() string {
	message := e.message
	if message == "" {
		message = http.StatusText(e.code)
	}

	if e.unmaskCause && e.cause != nil {
		return message + ": " + e.cause.Error()
	}

	return message
}

func WithMessage(message string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.message = message
	}
}

func WithCause(cause error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.cause = cause
	}
}

func WithUnmaskedCause() HTTPErrorOption {
	return func(e *HTTPError) {
		e.unmaskCause = true
	}
}

func NewHTTPError(code int, opts ...HTTPErrorOption) *HTTPError {
	err := new(HTTPError)
	err.code = code

	for _, opt := range opts {
		opt(err)
	}

	return err
}
