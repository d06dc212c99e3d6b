package main

import (
	"net/http"

	"ExamPrepAPI/internal/middleware"
	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
)

// Price fields are untyped: product catalogs deliver them as numbers or
// strings interchangeably and the cart service coerces them once.
type addCartItemRequest struct {
	ProductID     string `json:"_id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	DumpsPriceINR any    `json:"dumpsPriceInr"`
	DumpsPriceUSD any    `json:"dumpsPriceUsd"`
	ExamPriceINR  any    `json:"onlineExamPriceInr"`
	ExamPriceUSD  any    `json:"onlineExamPriceUsd"`
	Price         any    `json:"price"`
}

type cartItemKeyRequest struct {
	ProductID string `json:"_id"`
	Type      string `json:"type"`
}

type updateQuantityRequest struct {
	ProductID string `json:"_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
}

func registerCartRoutes(g *echo.Group, cs *services.CartService, jwtSecret []byte) {
	p := g.Group("/cart")
	p.Use(middleware.JWTMiddleware(jwtSecret))

	p.GET("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		cart, err := cs.Get(c.Request().Context(), claims.AuthID, c.QueryParam("currency"))
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cart)
	})

	p.POST("/items", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(addCartItemRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		cart, err := cs.Add(c.Request().Context(), claims.AuthID, services.AddItemInput{
			ProductID:     req.ProductID,
			Type:          req.Type,
			Title:         req.Title,
			Slug:          req.Slug,
			DumpsPriceINR: req.DumpsPriceINR,
			DumpsPriceUSD: req.DumpsPriceUSD,
			ExamPriceINR:  req.ExamPriceINR,
			ExamPriceUSD:  req.ExamPriceUSD,
			Price:         req.Price,
		})
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusCreated, cart)
	})

	p.PUT("/items", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(updateQuantityRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		cart, err := cs.UpdateQuantity(c.Request().Context(), claims.AuthID, req.ProductID, req.Type, req.Quantity)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cart)
	})

	p.DELETE("/items", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		req := new(cartItemKeyRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		cart, err := cs.Remove(c.Request().Context(), claims.AuthID, req.ProductID, req.Type)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, cart)
	})

	p.DELETE("", func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if err := cs.Clear(c.Request().Context(), claims.AuthID); err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "cleared"})
	})
}
