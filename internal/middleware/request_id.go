package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gearshare/rental-service/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID injects a correlation identifier into the context and headers.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Response().Header().Set(requestIDHeader, reqID)
			ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey{}, reqID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
