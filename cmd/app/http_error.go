package main

import (
	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
)

// jsonError maps a service error to its status with a plain error body.
func jsonError(c echo.Context, err error) error {
	return c.JSON(services.HTTPStatus(err), echo.Map{
		"error": services.PublicMessage(err),
	})
}

// paymentError is the same mapping with the payment endpoints' body shape.
func paymentError(c echo.Context, err error) error {
	return c.JSON(services.HTTPStatus(err), echo.Map{
		"success": false,
		"error":   services.PublicMessage(err),
	})
}
