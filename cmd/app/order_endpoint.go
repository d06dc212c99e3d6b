package main

import (
	"net/http"

	"ExamPrepAPI/internal/middleware"
	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type deleteOrdersRequest struct {
	OrderIDs []string `json:"orderIds"`
}

func registerOrderRoutes(g *echo.Group, os *services.OrderService, jwtSecret []byte) {
	p := g.Group("/orders")
	p.Use(middleware.JWTMiddleware(jwtSecret))

	p.POST("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(services.CreateOrderInput)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		res, err := os.CreateOrder(c.Request().Context(), claims.AuthID, *req)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"success":     true,
			"orderId":     res.OrderID,
			"orderNumber": res.OrderNumber,
		})
	})

	// Admin only; the role lives on the internal profile, so the check is in
	// the service against the database.
	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		orders, err := os.ListOrders(c.Request().Context(), claims.AuthID, c.QueryParam("userId"))
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"orders": orders})
	})

	p.DELETE("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(deleteOrdersRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		deleted, err := os.DeleteOrders(c.Request().Context(), claims.AuthID, req.OrderIDs)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success":      true,
			"deletedCount": deleted,
		})
	})
}
