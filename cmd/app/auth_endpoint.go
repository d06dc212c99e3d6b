package main

import (
	"net/http"

	"ExamPrepAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAuthRoutes(g *echo.Group, authSvc *services.AuthService) {
	p := g.Group("/auth")

	p.POST("/register", func(c echo.Context) error {
		req := new(registerRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		res, err := authSvc.Register(c.Request().Context(), req.Email, req.Password, req.Name)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusCreated, res)
	})

	p.POST("/login", func(c echo.Context) error {
		req := new(loginRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		res, err := authSvc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})
}
