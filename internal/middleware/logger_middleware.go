package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request with a generated request id.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := uuid.NewString()
			c.Set("request_id", requestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			evt := logger.Info()
			status := c.Response().Status
			if status >= 500 {
				evt = logger.Error()
			} else if status >= 400 {
				evt = logger.Warn()
			}
			evt.
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return nil
		}
	}
}
