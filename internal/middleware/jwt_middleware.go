package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims defines JWT payload structure
type Claims struct {
	AuthID uuid.UUID `json:"authid"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token for the given auth identity and expiry
func GenerateToken(secret []byte, authID uuid.UUID, email string, ttl time.Duration) (string, error) {
	claims := &Claims{
		AuthID: authID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "examprep-api",
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// JWTMiddleware returns an Echo middleware that validates the bearer token and
// attaches the claims to the request context. The secret is injected at wiring
// time, not read from the environment here.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			}
			parts := strings.Fields(auth)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
			}
			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token claims"})
			}
			c.Set("auth_claims", claims)
			return next(c)
		}
	}
}

// GetClaims extracts claims attached by JWTMiddleware
func GetClaims(c echo.Context) *Claims {
	v := c.Get("auth_claims")
	if v == nil {
		return nil
	}
	if cl, ok := v.(*Claims); ok {
		return cl
	}
	return nil
}
