package main

import (
	"net/http"

	"ExamPrepAPI/internal/middleware"
	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
)

func registerPaymentRoutes(g *echo.Group, ps *services.PaymentService, jwtSecret []byte) {
	p := g.Group("/payments")
	p.Use(middleware.JWTMiddleware(jwtSecret))

	p.POST("/razorpay/verify", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(services.VerifyRazorpayInput)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
		}
		res, err := ps.VerifyRazorpay(c.Request().Context(), claims.AuthID, *req)
		if err != nil {
			return paymentError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"paymentId": res.Payment.GatewayPaymentID,
			"orderId":   req.GatewayOrderID,
			"user":      res.User,
		})
	})

	p.POST("/paypal/verify", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(services.VerifyPayPalInput)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid request"})
		}
		res, err := ps.VerifyPayPal(c.Request().Context(), claims.AuthID, *req)
		if err != nil {
			return paymentError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"paymentId": res.Payment.GatewayPaymentID,
			"orderId":   req.GatewayOrderID,
			"user":      res.User,
		})
	})
}
